package archiver

import (
	"fmt"
	"io/fs"

	"github.com/bcup/bcup/internal/archive"
	"github.com/bcup/bcup/internal/errors"
)

var (
	// ErrNotFound is returned when an input path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when an input path cannot be accessed.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrWalk is returned when a directory cannot be read during traversal.
	ErrWalk = errors.New("walk failed")

	// ErrInvalidInput is returned for inputs that are neither a regular file
	// nor a directory.
	ErrInvalidInput = errors.New("not a regular file or directory")
)

// PathError records the input path and the kind of failure that aborted a
// build. Both Kind and Err are visible to errors.Is and errors.As.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *PathError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsBuildError reports whether err was returned by a failed build.
func IsBuildError(err error) bool {
	var perr *PathError
	return errors.As(err, &perr)
}

var kinds = []error{
	ErrNotFound,
	ErrPermissionDenied,
	ErrWalk,
	ErrInvalidInput,
	archive.ErrInvalidPath,
	archive.ErrDuplicateEntry,
	archive.ErrClosedWriter,
	archive.ErrWriteFailure,
}

// kindOf maps err to one of the failure kinds, or fallback if none matches.
func kindOf(err, fallback error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	}
	return fallback
}

func newPathError(op, path string, err, fallback error) *PathError {
	return &PathError{
		Op:   op,
		Path: path,
		Kind: kindOf(err, fallback),
		Err:  err,
	}
}
