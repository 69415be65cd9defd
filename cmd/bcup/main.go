package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/bcup/bcup/internal/archiver"
	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/transport"
)

func init() {
	// don't import `go.uber.org/automaxprocs` to disable the log output
	_, _ = maxprocs.Set()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bcup",
		Short: "Archive files and send them to Telegram",
		Long: `
bcup packs the configured files and directories into a single ZIP archive and
sends it to a Telegram chat through a bot.

Run "bcup init" to store the bot token and the authorized user, then add paths
with "bcup config add_path <path>" and run "bcup run".
`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		DisableAutoGenTag: true,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return globalOptions.PreRun()
		},
	}

	globalOptions.AddFlags(cmd.PersistentFlags())
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newConfigCommand(),
		newInitCommand(),
		newOptionsCommand(),
		newRunCommand(),
		newServeCommand(),
		newVersionCommand(),
	)

	return cmd
}

// exitCode maps the error returned by a command to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	case archiver.IsBuildError(err):
		return 2
	case transport.IsError(err):
		return 3
	default:
		return 1
	}
}

func main() {
	// install custom global logger into a buffer, if an error occurs
	// we can show the logs
	logBuffer := bytes.NewBuffer(nil)
	log.SetOutput(logBuffer)

	debug.Log("main %#v", os.Args)
	debug.Log("bcup %s compiled with %v on %v/%v",
		version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	ctx := createGlobalContext()
	err := newRootCommand().ExecuteContext(ctx)
	if err == nil {
		err = ctx.Err()
	}

	var exitMessage string
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		exitMessage = "interrupted"
	case errors.IsFatal(err):
		exitMessage = err.Error()
	default:
		exitMessage = fmt.Sprintf("%+v", err)
		if !debug.Enabled() {
			exitMessage = err.Error()
		}

		if logBuffer.Len() > 0 {
			exitMessage += "\nalso, the following messages were logged by a library:\n"
			sc := bufio.NewScanner(logBuffer)
			for sc.Scan() {
				exitMessage += fmt.Sprintln(sc.Text())
			}
		}
	}

	code := exitCode(err)
	if code != 0 {
		_, _ = fmt.Fprintf(globalOptions.stderr, "%v\n", exitMessage)
	}
	Exit(code)
}
