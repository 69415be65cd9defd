package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bcup/bcup/internal/config"
	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/options"
	"github.com/bcup/bcup/internal/terminal"
	"github.com/bcup/bcup/internal/textfile"
	"github.com/bcup/bcup/internal/ui/progress"
)

func newInitCommand() *cobra.Command {
	var opts InitOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Store the Telegram bot token and the authorized user",
		Long: `
The "init" command stores the Telegram bot token and the ID of the user who is
allowed to receive archives and to request backups. Both are written to
secrets.toml in the configuration directory, which is only readable by the
owner.

The token is taken from --bot-token, from the file given with --bot-token-file
or from $BCUP_TELEGRAM_BOT_TOKEN. If none is set and stdin is a terminal, the
token is read from a prompt.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), opts, globalOptions, args, newTextPrinter(globalOptions))
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// InitOptions bundles all options for the init command.
type InitOptions struct {
	BotToken     string
	BotTokenFile string
	UserID       int64
}

func (opts *InitOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&opts.BotToken, "bot-token", "", "Telegram bot `token` as issued by @BotFather")
	f.StringVar(&opts.BotTokenFile, "bot-token-file", "", "`file` to read the Telegram bot token from")
	f.Int64Var(&opts.UserID, "user-id", 0, "Telegram user `id` allowed to receive archives and to request backups")
}

func runInit(ctx context.Context, opts InitOptions, gopts GlobalOptions, args []string, printer progress.Printer) error {
	if len(args) > 0 {
		return errors.Fatal("the init command expects no arguments, only options - please see `bcup help init` for usage and flags")
	}
	if opts.BotToken != "" && opts.BotTokenFile != "" {
		return errors.Fatal("--bot-token and --bot-token-file cannot be specified at the same time")
	}
	if opts.UserID <= 0 {
		return errors.Fatal("please specify the authorized Telegram user with --user-id")
	}

	token, err := resolveBotToken(ctx, opts)
	if err != nil {
		return err
	}

	dir, err := gopts.configDir()
	if err != nil {
		return err
	}

	secrets, err := config.LoadSecrets(dir)
	if err != nil && !errors.Is(err, config.ErrNotConfigured) {
		return err
	}
	secrets.TelegramBotToken = options.NewSecretString(token)
	secrets.AuthorizedUserID = opts.UserID
	if err := secrets.Save(dir); err != nil {
		return errors.Fatalf("unable to save secrets: %v", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if err := cfg.Save(dir); err != nil {
		return errors.Fatalf("unable to save config: %v", err)
	}

	printer.P("Security configuration saved!")
	printer.V("configuration directory is %v", dir)
	return nil
}

// resolveBotToken returns the token from the flags, the environment or a
// prompt, in this order.
func resolveBotToken(ctx context.Context, opts InitOptions) (string, error) {
	switch {
	case opts.BotToken != "":
		return opts.BotToken, nil
	case opts.BotTokenFile != "":
		return textfile.ReadSecret(opts.BotTokenFile)
	}

	if token := os.Getenv("BCUP_TELEGRAM_BOT_TOKEN"); token != "" {
		return token, nil
	}

	if !stdinIsTerminal() {
		return "", errors.Fatal("no bot token given, use --bot-token or --bot-token-file")
	}

	token, err := terminal.ReadPassword(ctx, os.Stdin, os.Stderr, "enter Telegram bot token: ")
	if err != nil {
		return "", errors.Wrap(err, "unable to read bot token")
	}
	if token == "" {
		return "", errors.Fatal("an empty bot token is not allowed")
	}
	return token, nil
}
