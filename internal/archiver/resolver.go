package archiver

import (
	"os"
)

// InputType is the result of classifying an input path.
type InputType int

const (
	TypeFile InputType = iota + 1
	TypeDir
)

func (t InputType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDir:
		return "dir"
	default:
		return "invalid"
	}
}

// Classify reports whether path is a regular file or a directory. Symlinks
// are resolved. Missing paths fail with ErrNotFound, paths that cannot be
// stat'ed with ErrPermissionDenied, and everything else that is not a file or
// directory with ErrInvalidInput.
func Classify(path string) (InputType, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, newPathError("classify", path, err, ErrWalk)
	}

	switch {
	case fi.Mode().IsRegular():
		return TypeFile, nil
	case fi.IsDir():
		return TypeDir, nil
	default:
		return 0, &PathError{Op: "classify", Path: path, Kind: ErrInvalidInput}
	}
}
