package archiver

import (
	"fmt"
	"io"
	"os"

	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
)

// Artifact is a finished, synced archive in a temporary file. The caller owns
// it and must call Remove once the archive was delivered or is no longer
// needed.
type Artifact struct {
	file     *os.File
	size     int64
	checksum uint64
	entries  int
	bytes    uint64
}

// Name returns the path of the temporary file.
func (a *Artifact) Name() string {
	return a.file.Name()
}

// Size returns the size of the archive in bytes.
func (a *Artifact) Size() int64 {
	return a.size
}

// Checksum returns the xxhash64 of the archive as hex string.
func (a *Artifact) Checksum() string {
	return fmt.Sprintf("%016x", a.checksum)
}

// Entries returns the number of files in the archive.
func (a *Artifact) Entries() int {
	return a.entries
}

// Bytes returns the uncompressed size of all files in the archive.
func (a *Artifact) Bytes() uint64 {
	return a.bytes
}

// Open rewinds the artifact and returns it for reading. Every call starts at
// the beginning of the archive, so retries can read it again.
func (a *Artifact) Open() (io.ReadSeeker, error) {
	if a.file == nil {
		return nil, errors.New("artifact was removed")
	}
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return nil, errors.WithStack(err)
	}
	return a.file, nil
}

// ReaderAt returns the archive for random access, as needed by zip readers.
func (a *Artifact) ReaderAt() io.ReaderAt {
	return a.file
}

// Remove closes and deletes the temporary file. Calling Remove more than once
// is harmless.
func (a *Artifact) Remove() error {
	if a.file == nil {
		return nil
	}

	name := a.file.Name()
	_ = a.file.Close()
	a.file = nil

	debug.Log("removing artifact %v", name)
	err := os.Remove(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errors.WithStack(err)
}
