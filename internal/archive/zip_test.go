package archive

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/bcup/bcup/internal/errors"
	rtest "github.com/bcup/bcup/internal/test"
)

func readZip(t testing.TB, buf []byte) map[string][]byte {
	t.Helper()

	z, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	rtest.OK(t, err)

	files := make(map[string][]byte)
	for _, f := range z.File {
		rc, err := f.Open()
		rtest.OK(t, err)
		data, err := io.ReadAll(rc)
		rtest.OK(t, err)
		rtest.OK(t, rc.Close())
		files[f.Name] = data
	}
	return files
}

func TestZipWriterRoundTrip(t *testing.T) {
	entries := map[string][]byte{
		"notes.txt":       []byte("hello"),
		"empty":           {},
		"sub/binary.bin":  rtest.Random(23, 300*1024),
		"sub/deep/x.data": {0, 1, 2, 0xff, 0xfe, 0},
	}

	for _, mode := range []CompressionMode{CompressionDefault, CompressionStore, CompressionFastest, CompressionBest} {
		t.Run(mode.String(), func(t *testing.T) {
			buf := &bytes.Buffer{}
			zw := NewZipWriter(buf, mode)

			for _, name := range []string{"notes.txt", "empty", "sub/binary.bin", "sub/deep/x.data"} {
				w, err := zw.BeginEntry(Header{Name: name, ModTime: time.Now(), Mode: 0644})
				rtest.OK(t, err)
				_, err = io.Copy(w, bytes.NewReader(entries[name]))
				rtest.OK(t, err)
			}
			rtest.Equals(t, 4, zw.Len())
			rtest.OK(t, zw.Finish())

			files := readZip(t, buf.Bytes())
			rtest.Equals(t, len(entries), len(files))
			for name, data := range entries {
				got, ok := files[name]
				rtest.Assert(t, ok, "entry %v missing", name)
				rtest.Assert(t, bytes.Equal(data, got), "content of %v does not match", name)
			}
		})
	}
}

func TestZipWriterEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	zw := NewZipWriter(buf, CompressionDefault)
	rtest.OK(t, zw.Finish())

	rtest.Equals(t, 0, len(readZip(t, buf.Bytes())))
}

func TestValidName(t *testing.T) {
	for _, test := range []struct {
		name string
		ok   bool
	}{
		{"a.txt", true},
		{"sub/b.txt", true},
		{"..data", true},
		{"a..b/c", true},
		{"x:y.txt", true},
		{`a\b.txt`, true},
		{`sub\..\b.txt`, true},
		{"", false},
		{"/etc/passwd", false},
		{"C:/windows", false},
		{"../escape", false},
		{"sub/../../escape", false},
		{"sub/..", false},
		{"./a.txt", false},
		{"sub//b.txt", false},
		{"sub/", false},
	} {
		err := ValidName(test.name)
		if test.ok {
			rtest.OK(t, err)
			continue
		}
		rtest.Assert(t, errors.Is(err, ErrInvalidPath), "name %q: expected ErrInvalidPath, got %v", test.name, err)
	}
}

func TestZipWriterInvalidPath(t *testing.T) {
	zw := NewZipWriter(io.Discard, CompressionDefault)
	_, err := zw.BeginEntry(Header{Name: "../x"})
	rtest.ErrorIs(t, err, ErrInvalidPath)
	rtest.Equals(t, 0, zw.Len())
}

func TestZipWriterDuplicate(t *testing.T) {
	zw := NewZipWriter(io.Discard, CompressionDefault)

	_, err := zw.BeginEntry(Header{Name: "a.txt"})
	rtest.OK(t, err)

	_, err = zw.BeginEntry(Header{Name: "a.txt"})
	rtest.ErrorIs(t, err, ErrDuplicateEntry)
}

func TestZipWriterClosed(t *testing.T) {
	zw := NewZipWriter(io.Discard, CompressionDefault)

	first, err := zw.BeginEntry(Header{Name: "a.txt"})
	rtest.OK(t, err)
	_, err = zw.BeginEntry(Header{Name: "b.txt"})
	rtest.OK(t, err)

	_, err = first.Write([]byte("late"))
	rtest.ErrorIs(t, err, ErrClosedWriter)

	rtest.OK(t, zw.Finish())

	rtest.ErrorIs(t, zw.Finish(), ErrClosedWriter)
	_, err = zw.BeginEntry(Header{Name: "c.txt"})
	rtest.ErrorIs(t, err, ErrClosedWriter)
}

type failingWriter struct {
	limit int
}

var errDiskFull = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		n := w.limit
		w.limit = 0
		return n, errDiskFull
	}
	w.limit -= len(p)
	return len(p), nil
}

func TestZipWriterWriteFailure(t *testing.T) {
	zw := NewZipWriter(&failingWriter{limit: 100}, CompressionStore)

	var err error
	w, err := zw.BeginEntry(Header{Name: "big"})
	if err == nil {
		_, err = w.Write(rtest.Random(1, 64*1024))
	}
	if err == nil {
		err = zw.Finish()
	}

	rtest.ErrorIs(t, err, ErrWriteFailure)
	rtest.ErrorIs(t, err, errDiskFull)
}

func TestCompressionMode(t *testing.T) {
	var c CompressionMode
	for _, name := range []string{"store", "fastest", "default", "best"} {
		rtest.OK(t, c.Set(name))
		rtest.Equals(t, name, c.String())

		text, err := c.MarshalText()
		rtest.OK(t, err)
		rtest.Equals(t, name, string(text))
	}

	err := c.Set("zstd")
	rtest.Assert(t, err != nil, "expected error for unknown mode")
	rtest.Assert(t, errors.IsFatal(err), "error should be fatal, got %v", err)

	rtest.OK(t, c.UnmarshalText(nil))
	rtest.Equals(t, CompressionDefault, c)
}
