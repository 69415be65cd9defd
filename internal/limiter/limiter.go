// Package limiter caps the bandwidth used for uploading archives.
package limiter

import (
	"context"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// Limits holds the bandwidth caps in KiB/s. Zero means unlimited.
type Limits struct {
	UploadKb int
}

// Limiter wraps readers and HTTP transports so that the data passing through
// them is throttled.
type Limiter interface {
	// Upstream returns a reader that limits the rate at which data is read
	// from rd. ctx aborts waiting for the bucket.
	Upstream(ctx context.Context, rd io.Reader) io.Reader

	// Transport returns an http.RoundTripper that limits request bodies.
	Transport(http.RoundTripper) http.RoundTripper
}

type staticLimiter struct {
	upstream *rate.Limiter
}

// NewStaticLimiter returns a Limiter with a fixed upload rate.
func NewStaticLimiter(l Limits) Limiter {
	var upstream *rate.Limiter
	if l.UploadKb > 0 {
		upstream = rate.NewLimiter(rate.Limit(toByteRate(l.UploadKb)), toByteRate(l.UploadKb))
	}

	return staticLimiter{upstream: upstream}
}

func (l staticLimiter) Upstream(ctx context.Context, rd io.Reader) io.Reader {
	if l.upstream == nil {
		return rd
	}
	return &rateLimitedReader{ctx: ctx, rd: rd, bucket: l.upstream}
}

type roundTripper func(*http.Request) (*http.Response, error)

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req)
}

func (l staticLimiter) Transport(rt http.RoundTripper) http.RoundTripper {
	if l.upstream == nil {
		return rt
	}

	return roundTripper(func(req *http.Request) (*http.Response, error) {
		if req.Body != nil {
			req.Body = limitedReadCloser{
				Reader: l.Upstream(req.Context(), req.Body),
				closer: req.Body,
			}
		}
		return rt.RoundTrip(req)
	})
}

type limitedReadCloser struct {
	io.Reader
	closer io.Closer
}

func (l limitedReadCloser) Close() error {
	return l.closer.Close()
}

type rateLimitedReader struct {
	ctx    context.Context
	rd     io.Reader
	bucket *rate.Limiter
}

func (r *rateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.rd.Read(p)
	if werr := consumeTokens(r.ctx, n, r.bucket); werr != nil {
		return n, werr
	}
	return n, err
}

// consumeTokens waits until n bytes may pass. WaitN refuses to wait for more
// than the burst size at once.
func consumeTokens(ctx context.Context, n int, bucket *rate.Limiter) error {
	burst := bucket.Burst()
	for n > burst {
		if err := bucket.WaitN(ctx, burst); err != nil {
			return err
		}
		n -= burst
	}
	return bucket.WaitN(ctx, n)
}

func toByteRate(kb int) int {
	return kb * 1024
}
