package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/bcup/bcup/internal/config"
	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/limiter"
	"github.com/bcup/bcup/internal/options"
	"github.com/bcup/bcup/internal/terminal"
	"github.com/bcup/bcup/internal/transport"
)

var version = "0.3.0-dev (compiled manually)"

// GlobalOptions hold all global options for bcup.
type GlobalOptions struct {
	ConfigDir string
	TempDir   string
	Quiet     bool
	Verbose   int
	Options   []string

	limiter.Limits

	stdout io.Writer
	stderr io.Writer

	// verbosity is set as follows:
	//  0 means: don't print any messages except errors, this is used when --quiet is specified
	//  1 is the default: print essential messages
	//  2 means: print more messages, this is used when --verbose is specified
	//  3 means: print very detailed messages, this is used when --verbose=2 is specified
	verbosity uint

	extended options.Options
}

func (opts *GlobalOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&opts.ConfigDir, "config-dir", "", "read configuration and secrets from `directory` (default: $BCUP_CONFIG_DIR or the user config directory)")
	f.StringVar(&opts.TempDir, "temp-dir", "", "create the archive in `directory` (default: $BCUP_TEMP_DIR, temp_dir from the config or the system temp directory)")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "do not output progress and summary messages")
	f.CountVarP(&opts.Verbose, "verbose", "v", "be verbose (specify multiple times or a level using --verbose=n``, max level/times is 2)")
	f.StringSliceVarP(&opts.Options, "option", "o", []string{}, "set extended option (`key=value`, can be specified multiple times)")
	f.IntVar(&opts.Limits.UploadKb, "limit-upload", 0, "limits uploads to a maximum `rate` in KiB/s. (default: unlimited)")

	opts.ConfigDir = os.Getenv("BCUP_CONFIG_DIR")
	opts.TempDir = os.Getenv("BCUP_TEMP_DIR")
}

func (opts *GlobalOptions) PreRun() error {
	opts.verbosity = 1
	if opts.Quiet && opts.Verbose > 0 {
		return errors.Fatal("--quiet and --verbose cannot be specified at the same time")
	}

	switch {
	case opts.Verbose >= 2:
		opts.verbosity = 3
	case opts.Verbose > 0:
		opts.verbosity = 2
	case opts.Quiet:
		opts.verbosity = 0
	}

	if opts.Limits.UploadKb < 0 {
		return errors.Fatal("--limit-upload must not be negative")
	}

	extended, err := options.Parse(opts.Options)
	if err != nil {
		return err
	}
	opts.extended = extended
	return nil
}

var globalOptions = GlobalOptions{
	stdout: os.Stdout,
	stderr: os.Stderr,
}

// configDir returns the directory holding config.toml and secrets.toml.
func (opts GlobalOptions) configDir() (string, error) {
	return config.Dir(opts.ConfigDir)
}

// loadConfig reads the configuration. A temp directory from the command line
// or the environment replaces the configured one.
func (opts GlobalOptions) loadConfig() (string, config.AppConfig, error) {
	dir, err := opts.configDir()
	if err != nil {
		return "", config.AppConfig{}, err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return "", config.AppConfig{}, err
	}

	if opts.TempDir != "" {
		cfg.TempDir = opts.TempDir
	}
	debug.Log("config from %v: %d paths, destination %v", dir, len(cfg.Paths), cfg.Destination)
	return dir, cfg, nil
}

// loadSecrets reads the secrets and checks that they are complete.
func (opts GlobalOptions) loadSecrets(dir string) (config.Secrets, error) {
	secrets, err := config.LoadSecrets(dir)
	if errors.Is(err, config.ErrNotConfigured) {
		return config.Secrets{}, errors.Fatalf("no secrets found in %v, run `bcup init` first", filepath.Join(dir, "secrets.toml"))
	}
	if err != nil {
		return config.Secrets{}, err
	}

	return secrets, secrets.Check()
}

// transportOptions returns the settings for building senders.
func (opts GlobalOptions) transportOptions() transport.Options {
	return transport.Options{
		Extended: opts.extended,
		Limits:   opts.Limits,
		Report: func(msg string, err error, d time.Duration) {
			Warnf("%v returned error, retrying after %v: %v\n", msg, d.Round(time.Millisecond), err)
		},
	}
}

func (opts GlobalOptions) printf(minVerbosity uint, format string, args ...interface{}) {
	if opts.verbosity < minVerbosity {
		return
	}
	_, err := fmt.Fprintf(opts.stdout, format, args...)
	if err != nil {
		Warnf("unable to write to stdout: %v\n", err)
	}
}

// Printf writes the message to the configured stdout stream unless --quiet
// was given.
func Printf(format string, args ...interface{}) {
	globalOptions.printf(1, format, args...)
}

// Verbosef calls Printf if --verbose was given.
func Verbosef(format string, args ...interface{}) {
	globalOptions.printf(2, format, args...)
}

// Warnf writes the message to the configured stderr stream.
func Warnf(format string, args ...interface{}) {
	_, err := fmt.Fprintf(globalOptions.stderr, format, args...)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "unable to write to stderr: %v\n", err)
	}
}

// clearLine returns the control sequence to clear the current status line,
// or nothing if stdout is not a terminal.
func clearLine() string {
	if !canUpdateStatus(globalOptions.stdout) {
		return ""
	}
	return terminal.ClearLine
}

// canUpdateStatus reports whether w is a terminal which supports status lines.
func canUpdateStatus(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && terminal.CanUpdateStatus(f.Fd())
}

func stdinIsTerminal() bool {
	return terminal.InputIsTerminal(os.Stdin.Fd())
}

// progressInterval returns how often status lines are refreshed. The rate can
// be set with $BCUP_PROGRESS_FPS.
func progressInterval() time.Duration {
	interval := time.Second / 6
	fps, err := strconv.ParseFloat(os.Getenv("BCUP_PROGRESS_FPS"), 64)
	if err == nil && fps > 0 {
		if fps > 60 {
			fps = 60
		}
		interval = time.Duration(float64(time.Second) / fps)
	}
	return interval
}
