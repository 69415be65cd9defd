package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	rtest "github.com/bcup/bcup/internal/test"
)

type testEnv struct {
	gopts  GlobalOptions
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()

	env := &testEnv{
		stdout: new(bytes.Buffer),
		stderr: new(bytes.Buffer),
	}
	env.gopts = GlobalOptions{
		ConfigDir: filepath.Join(rtest.TempDir(t), "config"),
		TempDir:   rtest.TempDir(t),
		stdout:    env.stdout,
		stderr:    env.stderr,
	}
	rtest.OK(t, env.gopts.PreRun())
	return env
}

func (env *testEnv) printer() *textPrinter {
	return newTextPrinter(env.gopts)
}

func (env *testEnv) config(t testing.TB, args ...string) {
	t.Helper()
	rtest.OK(t, runConfig(context.TODO(), env.gopts, args, env.printer()))
}
