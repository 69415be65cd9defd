// Package hashing provides an io.Writer that checksums and counts the bytes
// passing through it.
package hashing

import (
	"hash"
	"io"
)

// Writer transparently hashes all data while writing it to the underlying writer.
type Writer struct {
	w io.Writer
	h hash.Hash
	n int64
}

// NewWriter wraps the writer w and feeds all data written to the hash h.
func NewWriter(w io.Writer, h hash.Hash) *Writer {
	return &Writer{
		h: h,
		w: w,
	}
}

// Write wraps the write method of the underlying writer and also hashes all
// data that was actually written.
func (h *Writer) Write(p []byte) (int, error) {
	n, err := h.w.Write(p)
	h.h.Write(p[:n])
	h.n += int64(n)
	return n, err
}

// Sum returns the hash of all data written so far.
func (h *Writer) Sum(d []byte) []byte {
	return h.h.Sum(d)
}

// Count returns the number of bytes written so far.
func (h *Writer) Count() int64 {
	return h.n
}
