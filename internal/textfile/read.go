// Package textfile reads small text files such as token files. It detects
// UTF-16 by its byte order mark and returns UTF-8 without BOM.
package textfile

import (
	"bytes"
	"os"

	"golang.org/x/text/encoding/unicode"

	"github.com/bcup/bcup/internal/errors"
)

var (
	bomUTF8    = []byte{0xef, 0xbb, 0xbf}
	bomUTF16BE = []byte{0xfe, 0xff}
	bomUTF16LE = []byte{0xff, 0xfe}
)

// Decode strips a byte order mark and converts UTF-16 input to UTF-8. Input
// without BOM is assumed to be UTF-8 already.
func Decode(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], nil
	case bytes.HasPrefix(data, bomUTF16BE), bytes.HasPrefix(data, bomUTF16LE):
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(data)
	}
	return data, nil
}

// Read returns the decoded contents of filename.
func Read(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// ReadSecret returns the first line of filename without surrounding
// whitespace. An empty result is an error.
func ReadSecret(filename string) (string, error) {
	data, err := Read(filename)
	if err != nil {
		return "", errors.Fatalf("unable to read %v: %v", filename, err)
	}

	line, _, _ := bytes.Cut(data, []byte("\n"))
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return "", errors.Fatalf("%v is empty", filename)
	}
	return string(line), nil
}
