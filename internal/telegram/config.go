package telegram

import (
	"net/url"
	"strings"
	"time"

	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/options"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// MaxUploadSize is the largest document the public Bot API accepts.
const MaxUploadSize = 50 * 1024 * 1024

// Config contains the settings for talking to the Bot API. It can be changed
// with extended options, e.g. "-o telegram.timeout=1m".
type Config struct {
	APIURL        string        `option:"api-url" help:"Bot API base URL (default: https://api.telegram.org)"`
	Timeout       time.Duration `option:"timeout" help:"timeout for API requests except uploads (default: 30s)"`
	UploadTimeout time.Duration `option:"upload-timeout" help:"timeout for a single upload attempt (default: 30m)"`
	MaxElapsed    time.Duration `option:"max-elapsed" help:"give up retrying failed requests after this duration (default: 15m)"`
	MaxUploadSize uint64        `option:"max-upload-size" help:"refuse archives larger than this many bytes (default: 52428800)"`
}

func init() {
	options.Register("telegram", Config{})
}

// NewConfig returns a new Config with the default values filled in.
func NewConfig() Config {
	return Config{
		APIURL:        DefaultAPIURL,
		Timeout:       30 * time.Second,
		UploadTimeout: 30 * time.Minute,
		MaxElapsed:    15 * time.Minute,
		MaxUploadSize: MaxUploadSize,
	}
}

// ApplyOptions sets the "telegram." extended options on cfg and validates
// the result.
func (cfg *Config) ApplyOptions(opts options.Options) error {
	if err := opts.Extract("telegram").Apply("telegram", cfg); err != nil {
		return err
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Fatalf("invalid Bot API URL %q", cfg.APIURL)
	}
	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")

	if cfg.Timeout <= 0 || cfg.UploadTimeout <= 0 {
		return errors.Fatal("telegram timeouts must be positive")
	}
	return nil
}
