package archive

import (
	"fmt"

	"github.com/klauspost/compress/flate"

	"github.com/bcup/bcup/internal/errors"
)

// CompressionMode selects how entry content is compressed.
type CompressionMode uint

const (
	CompressionDefault CompressionMode = iota
	CompressionStore
	CompressionFastest
	CompressionBest
	compressionInvalid
)

var compressionNames = map[CompressionMode]string{
	CompressionDefault: "default",
	CompressionStore:   "store",
	CompressionFastest: "fastest",
	CompressionBest:    "best",
}

// level returns the flate level for c. It is only meaningful for modes other
// than CompressionStore.
func (c CompressionMode) level() int {
	switch c {
	case CompressionFastest:
		return flate.BestSpeed
	case CompressionBest:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}

// Set implements the method needed for pflag command flag parsing.
func (c *CompressionMode) Set(s string) error {
	for mode, name := range compressionNames {
		if name == s {
			*c = mode
			return nil
		}
	}

	*c = compressionInvalid
	return errors.Fatalf("invalid compression mode %q, must be one of (store|fastest|default|best)", s)
}

func (c *CompressionMode) String() string {
	if name, ok := compressionNames[*c]; ok {
		return name
	}
	return fmt.Sprintf("invalid(%d)", uint(*c))
}

// Type implements pflag.Value.
func (c *CompressionMode) Type() string {
	return "mode"
}

// MarshalText stores the mode by name in config files.
func (c CompressionMode) MarshalText() ([]byte, error) {
	name, ok := compressionNames[c]
	if !ok {
		return nil, errors.Errorf("invalid compression mode %d", uint(c))
	}
	return []byte(name), nil
}

// UnmarshalText parses a mode name from config files.
func (c *CompressionMode) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = CompressionDefault
		return nil
	}
	return c.Set(string(text))
}
