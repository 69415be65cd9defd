package archiver

import (
	"path/filepath"
	"testing"

	rtest "github.com/bcup/bcup/internal/test"
)

func TestClassify(t *testing.T) {
	tempdir := rtest.TempDir(t)
	TestCreateFiles(t, tempdir, TestDir{
		"file": TestFile{Content: "foo"},
		"dir":  TestDir{},
	})

	typ, err := Classify(filepath.Join(tempdir, "file"))
	rtest.OK(t, err)
	rtest.Equals(t, TypeFile, typ)

	typ, err = Classify(filepath.Join(tempdir, "dir"))
	rtest.OK(t, err)
	rtest.Equals(t, TypeDir, typ)

	_, err = Classify(filepath.Join(tempdir, "missing"))
	rtest.ErrorIs(t, err, ErrNotFound)
	rtest.Assert(t, IsBuildError(err), "expected a PathError, got %T", err)
}
