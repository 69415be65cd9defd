package terminal

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bcup/bcup/internal/errors"
)

// ReadPassword prints prompt to out and reads a line from the terminal in
// without echoing it. Surrounding whitespace is removed. If ctx is canceled,
// the terminal state is restored and the reading goroutine is leaked.
func ReadPassword(ctx context.Context, in *os.File, out *os.File, prompt string) (string, error) {
	fd := int(in.Fd())
	state, err := term.GetState(fd)
	if err != nil {
		return "", errors.Wrap(err, "GetState")
	}

	type result struct {
		buf []byte
		err error
	}
	done := make(chan result, 1)

	go func() {
		if _, err := fmt.Fprint(out, prompt); err != nil {
			done <- result{err: err}
			return
		}
		buf, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(out)
		done <- result{buf: buf, err: err}
	}()

	select {
	case <-ctx.Done():
		if err := term.Restore(fd, state); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "unable to restore terminal state: %v\n", err)
		}
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", errors.Wrap(res.err, "ReadPassword")
		}
		return strings.TrimSpace(string(res.buf)), nil
	}
}
