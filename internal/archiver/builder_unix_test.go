//go:build !windows

package archiver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bcup/bcup/internal/errors"
	rtest "github.com/bcup/bcup/internal/test"
)

func TestBuildUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	src := rtest.TempDir(t)
	TestCreateFiles(t, src, TestDir{
		"docs": TestDir{
			"a.txt":      TestFile{Content: "A"},
			"secret.txt": TestFile{Content: "S"},
		},
	})
	secret := filepath.Join(src, "docs", "secret.txt")
	rtest.OK(t, os.Chmod(secret, 0))
	defer func() {
		rtest.OK(t, os.Chmod(secret, 0644))
	}()

	b, tmp := newTestBuilder(t)
	art, err := b.Build(context.TODO(), []string{filepath.Join(src, "docs")})
	rtest.Assert(t, art == nil, "no artifact expected on failure")
	rtest.ErrorIs(t, err, ErrPermissionDenied)

	var perr *PathError
	rtest.Assert(t, errors.As(err, &perr), "expected a PathError, got %T", err)
	rtest.Equals(t, secret, perr.Path)
	rtest.Equals(t, "open", perr.Op)

	assertNoArtifact(t, tmp)
}

func TestBuildSymlinkedInput(t *testing.T) {
	src := rtest.TempDir(t)
	TestCreateFiles(t, src, TestDir{
		"real": TestDir{
			"a.txt": TestFile{Content: "A"},
			"skip":  TestSymlink{Target: "a.txt"},
		},
		"link": TestSymlink{Target: "real"},
	})

	b, _ := newTestBuilder(t)
	entries := buildOK(t, b, filepath.Join(src, "link"))
	rtest.Equals(t, map[string]string{"a.txt": "A"}, entries)
}

func TestBuildBackslashInName(t *testing.T) {
	src := rtest.TempDir(t)
	TestCreateFiles(t, src, TestDir{
		"docs": TestDir{
			`a\b.txt`: TestFile{Content: "AB"},
			"ok.txt":  TestFile{Content: "OK"},
		},
	})

	b, _ := newTestBuilder(t)
	entries := buildOK(t, b, filepath.Join(src, "docs"))
	rtest.Equals(t, map[string]string{`a\b.txt`: "AB", "ok.txt": "OK"}, entries)
}
