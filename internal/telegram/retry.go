package telegram

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
)

var fastRetries = false

// floodBackOff waits at least as long as the Bot API asked for in its last
// flood control reply.
type floodBackOff struct {
	backoff.BackOff
	retryAfter time.Duration
}

func (b *floodBackOff) NextBackOff() time.Duration {
	d := b.BackOff.NextBackOff()
	if d != backoff.Stop && b.retryAfter > d {
		d = b.retryAfter
	}
	b.retryAfter = 0
	return d
}

func (c *Client) retry(ctx context.Context, msg string, f func() error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.cfg.MaxElapsed
	if fastRetries {
		bo.InitialInterval = time.Millisecond
		bo.MaxElapsedTime = 200 * time.Millisecond
	}

	b := &floodBackOff{BackOff: bo}
	err := backoff.RetryNotify(
		func() error {
			err := f()
			if err == nil {
				return nil
			}

			var aerr *apiError
			if errors.As(err, &aerr) && aerr.RetryAfter > 0 {
				b.retryAfter = time.Duration(aerr.RetryAfter) * time.Second
			}

			if isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		},
		backoff.WithContext(b, ctx),
		func(err error, d time.Duration) {
			debug.Log("%v failed, retrying in %v: %v", msg, d, err)
			if c.Report != nil {
				c.Report(msg, err, d)
			}
		},
	)

	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
