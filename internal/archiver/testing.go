package archiver

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

// TestFile describes a file created by TestCreateFiles.
type TestFile struct {
	Content string
}

// TestDir describes a directory created by TestCreateFiles. Values are
// TestFile, TestDir or TestSymlink.
type TestDir map[string]interface{}

// TestSymlink describes a symlink created by TestCreateFiles.
type TestSymlink struct {
	Target string
}

// TestCreateFiles creates the files and directories described by dir below
// target, which must exist.
func TestCreateFiles(t testing.TB, target string, dir TestDir) {
	t.Helper()

	for name, item := range dir {
		p := filepath.Join(target, name)

		switch it := item.(type) {
		case TestFile:
			if err := os.WriteFile(p, []byte(it.Content), 0644); err != nil {
				t.Fatal(err)
			}
		case TestSymlink:
			if err := os.Symlink(filepath.FromSlash(it.Target), p); err != nil {
				t.Fatal(err)
			}
		case TestDir:
			if err := os.Mkdir(p, 0755); err != nil {
				t.Fatal(err)
			}
			TestCreateFiles(t, p, it)
		default:
			t.Fatalf("unknown item %T for %v", item, name)
		}
	}
}

// TestReadArchive returns the content of all entries of a, by name.
func TestReadArchive(t testing.TB, a *Artifact) map[string]string {
	t.Helper()

	z, err := zip.NewReader(a.ReaderAt(), a.Size())
	if err != nil {
		t.Fatalf("unable to read archive %v: %v", a.Name(), err)
	}

	entries := make(map[string]string, len(z.File))
	for _, f := range z.File {
		if _, ok := entries[f.Name]; ok {
			t.Fatalf("archive contains %v twice", f.Name)
		}

		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		_ = rc.Close()

		entries[f.Name] = string(data)
	}
	return entries
}
