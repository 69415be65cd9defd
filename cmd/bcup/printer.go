package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bcup/bcup/internal/terminal"
	"github.com/bcup/bcup/internal/ui"
	"github.com/bcup/bcup/internal/ui/progress"
)

// textPrinter prints messages according to the verbosity and draws byte
// counters as a status line when stdout is a terminal.
type textPrinter struct {
	gopts        GlobalOptions
	showProgress bool
	interval     time.Duration

	mu sync.Mutex
}

var _ progress.Printer = (*textPrinter)(nil)

func newTextPrinter(gopts GlobalOptions) *textPrinter {
	return &textPrinter{
		gopts:        gopts,
		showProgress: gopts.verbosity > 0 && canUpdateStatus(gopts.stdout),
		interval:     progressInterval(),
	}
}

// NewCounter returns a counter of bytes which is shown as a status line, or
// nil if no status is shown. Status lines are only drawn if stdout is a
// terminal, which is an *os.File.
func (p *textPrinter) NewCounter(description string) *progress.Counter {
	if !p.showProgress {
		return nil
	}

	return progress.NewCounter(p.interval, 0, func(value, _ uint64, d time.Duration, final bool) {
		p.mu.Lock()
		defer p.mu.Unlock()

		if final {
			_ = terminal.ClearCurrentLine(p.gopts.stdout)
			return
		}

		status := fmt.Sprintf("[%s] %s %s, %s", ui.FormatDuration(d), ui.FormatBytes(value), description, ui.FormatRate(value, d))
		if w := terminal.Width(p.gopts.stdout.(*os.File).Fd()); w > 0 {
			status = ui.Truncate(status, w-1)
		}
		_, _ = io.WriteString(p.gopts.stdout, terminal.ClearLine+status)
	})
}

func (p *textPrinter) print(w io.Writer, minVerbosity uint, msg string, args ...interface{}) {
	if p.gopts.verbosity < minVerbosity {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(w, msg+"\n", args...)
}

// E prints an error message, regardless of the verbosity.
func (p *textPrinter) E(msg string, args ...interface{}) {
	p.print(p.gopts.stderr, 0, msg, args...)
}

// P prints a message unless --quiet was given.
func (p *textPrinter) P(msg string, args ...interface{}) {
	p.print(p.gopts.stdout, 1, msg, args...)
}

// V prints a message if --verbose was given.
func (p *textPrinter) V(msg string, args ...interface{}) {
	p.print(p.gopts.stdout, 2, msg, args...)
}

// VV prints a message if --verbose was given twice.
func (p *textPrinter) VV(msg string, args ...interface{}) {
	p.print(p.gopts.stdout, 3, msg, args...)
}
