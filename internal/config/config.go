// Package config loads and stores the bcup configuration and secrets. Both
// live as TOML files in a per-user directory.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/bcup/bcup/internal/archive"
	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
)

const (
	// AppName names the configuration directory.
	AppName = "bcup"

	configFile  = "config.toml"
	secretsFile = "secrets.toml"
)

// ErrNotConfigured is returned by LoadSecrets if no secrets were stored yet.
var ErrNotConfigured = errors.New("not configured")

// Dir returns the configuration directory. A non-empty override wins,
// otherwise the platform convention is used: %APPDATA% on Windows,
// ~/Library/Application Support on macOS and $XDG_CONFIG_HOME (defaulting to
// ~/.config) elsewhere.
func Dir(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "UserHomeDir")
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", errors.Wrap(err, "UserHomeDir")
			}
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, AppName), nil
}

// Destination names where archives are delivered to.
type Destination string

// DestinationTelegram sends archives to a Telegram chat. It is the only
// destination so far.
const DestinationTelegram Destination = "telegram"

// ParseDestination checks that s names a known destination.
func ParseDestination(s string) (Destination, error) {
	switch d := Destination(s); d {
	case DestinationTelegram:
		return d, nil
	}
	return "", errors.Fatalf("invalid destination %q, must be one of (telegram)", s)
}

func (d *Destination) UnmarshalText(text []byte) error {
	dst, err := ParseDestination(string(text))
	if err != nil {
		return err
	}
	*d = dst
	return nil
}

// AppConfig is the content of config.toml.
type AppConfig struct {
	Destination Destination             `toml:"destination"`
	Paths       []string                `toml:"paths"`
	Compression archive.CompressionMode `toml:"compression"`
	TempDir     string                  `toml:"temp_dir,omitempty"`
}

// Default returns the configuration used before anything was stored.
func Default() AppConfig {
	return AppConfig{
		Destination: DestinationTelegram,
		Paths:       []string{},
	}
}

// Load reads config.toml from dir. A missing file yields the defaults.
func Load(dir string) (AppConfig, error) {
	cfg := Default()
	name := filepath.Join(dir, configFile)

	buf, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		debug.Log("%v does not exist, using defaults", name)
		return cfg, nil
	}
	if err != nil {
		return AppConfig{}, errors.Wrap(err, "ReadFile")
	}

	if err := decode(buf, &cfg); err != nil {
		return AppConfig{}, errors.Fatalf("unable to parse %v: %v", name, err)
	}
	if cfg.Paths == nil {
		cfg.Paths = []string{}
	}
	return cfg, nil
}

// Save writes cfg to config.toml in dir, creating dir if needed.
func (cfg AppConfig) Save(dir string) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "Marshal")
	}
	return writeFile(dir, configFile, buf, 0644)
}

// AddPath appends the absolute form of p to the paths to back up. A path
// which is already configured is rejected.
func (cfg *AppConfig) AddPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrap(err, "Abs")
	}

	if slices.Contains(cfg.Paths, abs) {
		return "", errors.Fatalf("path %v is already configured", abs)
	}
	cfg.Paths = append(cfg.Paths, abs)
	return abs, nil
}

// RemovePath removes p from the paths to back up. p may be given in relative
// form.
func (cfg *AppConfig) RemovePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrap(err, "Abs")
	}

	i := slices.Index(cfg.Paths, abs)
	if i < 0 {
		i = slices.Index(cfg.Paths, p)
	}
	if i < 0 {
		return "", errors.Fatalf("path %v is not configured", abs)
	}

	removed := cfg.Paths[i]
	cfg.Paths = slices.Delete(cfg.Paths, i, i+1)
	return removed, nil
}

func decode(buf []byte, v interface{}) error {
	dec := toml.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
