// Package archive defines the container interface the archiver streams
// entries into, together with its ZIP implementation.
package archive

import (
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/bcup/bcup/internal/errors"
)

var (
	// ErrInvalidPath is returned by BeginEntry for names that are empty,
	// absolute, unclean or contain a ".." segment.
	ErrInvalidPath = errors.New("invalid entry path")

	// ErrDuplicateEntry is returned by BeginEntry when the name was already
	// used in this archive.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrWriteFailure wraps I/O errors of the underlying stream.
	ErrWriteFailure = errors.New("write failure")

	// ErrClosedWriter is returned when a Writer or an entry sink is used after
	// it was finished.
	ErrClosedWriter = errors.New("writer is closed")
)

// Header describes one archive entry.
type Header struct {
	// Name is the slash separated path of the entry, relative to the
	// archive root.
	Name    string
	ModTime time.Time
	Mode    os.FileMode
}

// Writer appends entries to a container one at a time. Implementations are
// not safe for concurrent use.
type Writer interface {
	// BeginEntry starts a new entry. The returned io.Writer receives the
	// entry content and stays valid until the next call to BeginEntry or
	// Finish.
	BeginEntry(hdr Header) (io.Writer, error)

	// Finish writes the trailing index. It must be called exactly once; the
	// underlying stream is neither synced nor closed.
	Finish() error
}

// ValidName checks that name can be used as an entry name.
func ValidName(name string) error {
	switch {
	case name == "":
		return errors.Wrap(ErrInvalidPath, "empty name")
	case strings.HasPrefix(name, "/"), hasVolumeName(name):
		return errors.Wrapf(ErrInvalidPath, "%q is absolute", name)
	}

	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return errors.Wrapf(ErrInvalidPath, "%q contains a parent directory segment", name)
		}
	}

	if path.Clean(name) != name {
		return errors.Wrapf(ErrInvalidPath, "%q is not clean", name)
	}

	return nil
}

// hasVolumeName reports whether name starts with a drive letter like "C:/".
func hasVolumeName(name string) bool {
	if len(name) < 3 || name[1] != ':' || name[2] != '/' {
		return false
	}
	c := name[0] | 0x20
	return c >= 'a' && c <= 'z'
}
