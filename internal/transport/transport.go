// Package transport delivers finished archives to their destination.
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/bcup/bcup/internal/archiver"
	"github.com/bcup/bcup/internal/config"
	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/limiter"
	"github.com/bcup/bcup/internal/options"
	"github.com/bcup/bcup/internal/telegram"
)

// Sender uploads an archive. The caller keeps ownership of the artifact and
// removes it afterwards.
type Sender interface {
	Send(ctx context.Context, art *archiver.Artifact, caption string) error
}

// Error is returned by Deliver if the archive could not be sent.
type Error struct {
	Destination config.Destination
	Err         error
}

func (e *Error) Error() string {
	return "unable to send archive to " + string(e.Destination) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsError reports whether err was caused by a failed delivery.
func IsError(err error) bool {
	var terr *Error
	return errors.As(err, &terr)
}

// Options control how senders are built.
type Options struct {
	Extended options.Options
	Limits   limiter.Limits
	Report   func(msg string, err error, d time.Duration)
}

// ForDestination returns the Sender for the configured destination, using
// secrets for authentication.
func ForDestination(cfg config.AppConfig, secrets config.Secrets, opts Options) (Sender, error) {
	switch cfg.Destination {
	case config.DestinationTelegram, "":
		if err := secrets.Check(); err != nil {
			return nil, err
		}

		tcfg := telegram.NewConfig()
		if err := tcfg.ApplyOptions(opts.Extended); err != nil {
			return nil, err
		}

		rt := limiter.NewStaticLimiter(opts.Limits).Transport(http.DefaultTransport)
		c, err := telegram.New(tcfg, secrets.TelegramBotToken, secrets.AuthorizedUserID, debug.RoundTripper(rt))
		if err != nil {
			return nil, err
		}
		c.Report = opts.Report
		return c, nil
	}

	return nil, errors.Fatalf("unsupported destination %q", cfg.Destination)
}

// Deliver sends art with s. Failures other than cancellation are returned as
// *Error.
func Deliver(ctx context.Context, dest config.Destination, s Sender, art *archiver.Artifact, caption string) error {
	start := time.Now()
	debug.Log("sending %v (%d bytes, xxh64 %v) via %v", art.Name(), art.Size(), art.Checksum(), dest)

	err := s.Send(ctx, art, caption)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return err
		}
		return &Error{Destination: dest, Err: err}
	}

	debug.Log("sent %v in %v", art.Name(), time.Since(start))
	return nil
}
