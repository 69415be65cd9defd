package archive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
)

// ZipWriter writes a ZIP container. Entry names are stored as given; the
// central directory is written by Finish.
type ZipWriter struct {
	zw      *zip.Writer
	method  uint16
	names   map[string]struct{}
	current *zipEntry
	closed  bool
}

var _ Writer = &ZipWriter{}

// NewZipWriter returns a ZipWriter that writes the container to w.
func NewZipWriter(w io.Writer, mode CompressionMode) *ZipWriter {
	zw := zip.NewWriter(w)

	method := zip.Deflate
	if mode == CompressionStore {
		method = zip.Store
	} else {
		level := mode.level()
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	}

	return &ZipWriter{
		zw:     zw,
		method: method,
		names:  make(map[string]struct{}),
	}
}

func writeFailure(op string, err error) error {
	return errors.WithStack(fmt.Errorf("%s: %w: %w", op, ErrWriteFailure, err))
}

// BeginEntry starts a new file entry in the container.
func (z *ZipWriter) BeginEntry(hdr Header) (io.Writer, error) {
	if z.closed {
		return nil, errors.WithStack(ErrClosedWriter)
	}

	if err := ValidName(hdr.Name); err != nil {
		return nil, err
	}

	if _, ok := z.names[hdr.Name]; ok {
		return nil, errors.Wrapf(ErrDuplicateEntry, "%q", hdr.Name)
	}

	header := &zip.FileHeader{
		Name:     hdr.Name,
		Method:   z.method,
		Modified: hdr.ModTime,
	}
	if hdr.Mode != 0 {
		header.SetMode(hdr.Mode)
	}

	w, err := z.zw.CreateHeader(header)
	if err != nil {
		return nil, writeFailure("ZipHeader", err)
	}

	debug.Log("begin entry %v", hdr.Name)
	z.names[hdr.Name] = struct{}{}
	z.current = &zipEntry{w: w, parent: z}
	return z.current, nil
}

// Finish writes the central directory. The underlying writer is not closed.
func (z *ZipWriter) Finish() error {
	if z.closed {
		return errors.WithStack(ErrClosedWriter)
	}
	z.closed = true
	z.current = nil

	if err := z.zw.Close(); err != nil {
		return writeFailure("ZipFinish", err)
	}

	debug.Log("finished archive with %d entries", len(z.names))
	return nil
}

// Len returns the number of entries written so far.
func (z *ZipWriter) Len() int {
	return len(z.names)
}

// zipEntry is the sink returned by BeginEntry. It refuses writes once a later
// entry was started or the container was finished.
type zipEntry struct {
	w      io.Writer
	parent *ZipWriter
}

func (e *zipEntry) Write(p []byte) (int, error) {
	if e.parent.current != e {
		return 0, errors.WithStack(ErrClosedWriter)
	}

	n, err := e.w.Write(p)
	if err != nil {
		return n, writeFailure("Write", err)
	}
	return n, nil
}
