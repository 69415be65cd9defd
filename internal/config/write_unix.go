//go:build !windows

package config

import (
	"os"
	"path/filepath"

	"github.com/google/renameio"

	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
)

// writeFile atomically replaces dir/name with data. Readers either see the
// old or the new content, never a partial file.
func writeFile(dir, name string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "MkdirAll")
	}

	filename := filepath.Join(dir, name)
	debug.Log("writing %v (%d bytes)", filename, len(data))

	return errors.Wrap(renameio.WriteFile(filename, data, perm), "WriteFile")
}
