package config

import (
	"os"
	"path/filepath"

	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
)

// writeFile replaces dir/name with data using a temporary file and rename.
func writeFile(dir, name string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "MkdirAll")
	}

	filename := filepath.Join(dir, name)
	debug.Log("writing %v (%d bytes)", filename, len(data))

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return errors.Wrap(err, "WriteFile")
	}
	return errors.WithStack(os.Rename(tmp, filename))
}
