package progress

import (
	"os"
	"sync"
	"time"
)

var signals struct {
	ch   chan os.Signal
	once sync.Once
}

func signalsCh() <-chan os.Signal {
	signals.once.Do(func() {
		signals.ch = make(chan os.Signal, 1)
		setupSignals()
	})
	return signals.ch
}

// An UpdateFunc is a callback for an Updater. final is true on the last call.
type UpdateFunc func(runtime time.Duration, final bool)

// An Updater calls an UpdateFunc periodically, on SIGUSR1 (or SIGINFO on
// BSD), and once more when Done is called.
type Updater struct {
	report  UpdateFunc
	start   time.Time
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewUpdater starts a new Updater. An interval of zero disables periodic
// updates.
func NewUpdater(interval time.Duration, report UpdateFunc) *Updater {
	c := &Updater{
		report:  report,
		start:   time.Now(),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.run(interval)
	return c
}

// Done tells the Updater to stop and waits for the final report.
func (c *Updater) Done() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.stop) })
	<-c.stopped
}

func (c *Updater) run(interval time.Duration) {
	defer close(c.stopped)
	defer func() {
		c.report(time.Since(c.start), true)
	}()

	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	sig := signalsCh()
	for {
		select {
		case <-tick:
		case <-sig:
		case <-c.stop:
			return
		}

		c.report(time.Since(c.start), false)
	}
}
