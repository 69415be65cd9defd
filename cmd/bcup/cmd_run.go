package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/transport"
	"github.com/bcup/bcup/internal/ui"
	"github.com/bcup/bcup/internal/ui/progress"
)

func newRunCommand() *cobra.Command {
	var opts RunOptions

	cmd := &cobra.Command{
		Use:   "run [flags] [path...]",
		Short: "Archive the configured paths and send the archive",
		Long: `
The "run" command archives all configured paths into a single ZIP file and
sends it to the configured destination. Paths given on the command line are
archived instead of the configured ones.

Files are stored relative to the directory they were found in, so a file
"docs/sub/b.txt" below the configured path "docs" is stored as "sub/b.txt".
Symbolic links inside directories are skipped.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
Exit status is 2 if the archive could not be built.
Exit status is 3 if the archive could not be sent.
Exit status is 130 if the command was interrupted.
`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), opts, globalOptions, args, newTextPrinter(globalOptions))
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// RunOptions bundles all options for the run command.
type RunOptions struct {
	DryRun  bool
	Caption string
}

func (opts *RunOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVarP(&opts.DryRun, "dry-run", "n", false, "build the archive and report its size, but do not send it")
	f.StringVar(&opts.Caption, "caption", "", "`text` sent along with the archive (default: host name and date)")
}

func runRun(ctx context.Context, opts RunOptions, gopts GlobalOptions, args []string, printer progress.Printer) error {
	dir, cfg, err := gopts.loadConfig()
	if err != nil {
		return err
	}

	paths := cfg.Paths
	if len(args) > 0 {
		paths = make([]string, 0, len(args))
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return errors.Wrap(err, "Abs")
			}
			paths = append(paths, abs)
		}
	}

	if opts.DryRun {
		art, err := buildArchive(ctx, cfg, paths, printer)
		if err != nil {
			return err
		}
		printer.P("dry run, not sending %s archive", ui.FormatBytes(uint64(art.Size())))
		return art.Remove()
	}

	secrets, err := gopts.loadSecrets(dir)
	if err != nil {
		return err
	}

	sender, err := transport.ForDestination(cfg, secrets, gopts.transportOptions())
	if err != nil {
		return err
	}

	caption := opts.Caption
	if caption == "" {
		caption = defaultCaption()
	}

	return backupAndSend(ctx, cfg, paths, sender, caption, printer)
}

func defaultCaption() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown host"
	}
	return "Backup of " + host
}
