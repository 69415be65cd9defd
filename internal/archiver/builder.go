package archiver

import (
	"context"
	"io"
	"os"
	"syscall"

	"github.com/cespare/xxhash/v2"

	"github.com/bcup/bcup/internal/archive"
	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/hashing"
	"github.com/bcup/bcup/internal/ui/progress"
)

const copyBufferSize = 32 * 1024

// Builder creates archives. The zero value writes ZIP files with default
// compression to the system temp directory.
type Builder struct {
	// TempDir is the directory for the temporary artifact, see os.CreateTemp.
	TempDir     string
	Compression archive.CompressionMode

	// NewWriter returns the container writer. If nil, a ZIP writer is used.
	NewWriter func(w io.Writer) archive.Writer

	// Progress, if set, counts the bytes read from input files.
	Progress *progress.Counter
}

func (b *Builder) newWriter(w io.Writer) archive.Writer {
	if b.NewWriter != nil {
		return b.NewWriter(w)
	}
	return archive.NewZipWriter(w, b.Compression)
}

// Build archives paths, in order, into a new temporary file. On success the
// returned Artifact is synced and positioned at its start. On any error the
// temporary file is removed and no Artifact is returned.
//
// An empty list of paths yields a valid archive without entries.
func (b *Builder) Build(ctx context.Context, paths []string) (*Artifact, error) {
	f, err := os.CreateTemp(b.TempDir, "bcup-*.zip")
	if err != nil {
		return nil, errors.Wrap(err, "CreateTemp")
	}
	debug.Log("building archive %v from %d inputs", f.Name(), len(paths))

	done := false
	defer func() {
		if done {
			return
		}
		_ = f.Close()
		if rerr := os.Remove(f.Name()); rerr != nil {
			debug.Log("unable to remove %v: %v", f.Name(), rerr)
		}
	}()

	digest := xxhash.New()
	hw := hashing.NewWriter(f, digest)
	w := b.newWriter(hw)
	buf := make([]byte, copyBufferSize)

	art := &Artifact{}
	for _, p := range paths {
		typ, err := Classify(p)
		if err != nil {
			return nil, err
		}
		debug.Log("input %v is a %v", p, typ)

		for item, err := range Walk(p) {
			if err != nil {
				return nil, err
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			n, err := b.add(w, item, buf)
			if err != nil {
				return nil, err
			}
			art.entries++
			art.bytes += uint64(n)
		}
	}

	if err := w.Finish(); err != nil {
		return nil, newPathError("finish", f.Name(), err, archive.ErrWriteFailure)
	}

	if err := syncFile(f); err != nil {
		return nil, newPathError("sync", f.Name(), err, archive.ErrWriteFailure)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, newPathError("seek", f.Name(), err, archive.ErrWriteFailure)
	}

	art.file = f
	art.size = hw.Count()
	art.checksum = digest.Sum64()

	debug.Log("archive %v done: %d entries, %d bytes", f.Name(), art.entries, art.size)
	done = true
	return art, nil
}

// add streams a single file into w and returns the number of bytes copied.
// The input file is closed before add returns.
func (b *Builder) add(w archive.Writer, item Item, buf []byte) (int64, error) {
	src, err := os.Open(item.Path)
	if err != nil {
		return 0, newPathError("open", item.Path, err, ErrWalk)
	}
	defer func() {
		_ = src.Close()
	}()

	sink, err := w.BeginEntry(archive.Header{
		Name:    item.Name,
		ModTime: item.Info.ModTime(),
		Mode:    item.Info.Mode(),
	})
	if err != nil {
		return 0, newPathError("add", item.Path, err, archive.ErrWriteFailure)
	}

	n, err := io.CopyBuffer(sink, &countingReader{rd: src, counter: b.Progress}, buf)
	if err != nil {
		return n, newPathError("copy", item.Path, err, archive.ErrWriteFailure)
	}

	return n, nil
}

// countingReader reports read bytes to a progress counter. It also hides
// io.WriterTo of *os.File, so that io.CopyBuffer uses the bounded buffer.
type countingReader struct {
	rd      io.Reader
	counter *progress.Counter
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.rd.Read(p)
	r.counter.Add(uint64(n))
	return n, err
}

// syncFile flushes f to stable storage. Filesystems without fsync support are
// tolerated.
func syncFile(f *os.File) error {
	err := f.Sync()
	if err != nil && errors.Is(err, syscall.ENOTSUP) {
		debug.Log("fsync not supported for %v: %v", f.Name(), err)
		return nil
	}
	return err
}
