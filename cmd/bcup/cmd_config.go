package main

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bcup/bcup/internal/config"
	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/options"
	"github.com/bcup/bcup/internal/ui/progress"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config key [value]",
		Short: "Show or change settings",
		Long: `
The "config" command shows or changes a single setting. Without a value the
current setting is printed, the bot token is never shown.

Keys:

  destination          where archives are sent to, one of (telegram)
  telegram_bot_token   the Telegram bot token
  authorized_user_id   the Telegram user allowed to receive archives
  add_path             add a file or directory to back up
  remove_path          stop backing up a file or directory
  compression          one of (store|fastest|default|best)
  temp_dir             directory for the temporary archive

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd.Context(), globalOptions, args, newTextPrinter(globalOptions))
		},
	}

	return cmd
}

func runConfig(_ context.Context, gopts GlobalOptions, args []string, printer progress.Printer) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.Fatal("the config command expects a key and an optional value - please see `bcup help config` for usage")
	}

	key := args[0]
	var value *string
	if len(args) == 2 {
		value = &args[1]
	}

	dir, err := gopts.configDir()
	if err != nil {
		return err
	}

	switch key {
	case "telegram_bot_token", "authorized_user_id":
		return configSecret(dir, key, value, printer)
	case "destination", "add_path", "remove_path", "compression", "temp_dir":
		return configSetting(dir, key, value, printer)
	}

	return errors.Fatalf("unknown config key %q", key)
}

func configSetting(dir, key string, value *string, printer progress.Printer) error {
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	if value == nil {
		switch key {
		case "destination":
			printer.P("%v", cfg.Destination)
		case "add_path", "remove_path":
			for _, p := range cfg.Paths {
				printer.P("%v", p)
			}
		case "compression":
			printer.P("%v", cfg.Compression.String())
		case "temp_dir":
			printer.P("%v", cfg.TempDir)
		}
		return nil
	}

	switch key {
	case "destination":
		dest, err := config.ParseDestination(*value)
		if err != nil {
			return err
		}
		cfg.Destination = dest
	case "add_path":
		abs, err := cfg.AddPath(*value)
		if err != nil {
			return err
		}
		printer.V("added %v", abs)
	case "remove_path":
		removed, err := cfg.RemovePath(*value)
		if err != nil {
			return err
		}
		printer.V("removed %v", removed)
	case "compression":
		if err := cfg.Compression.Set(*value); err != nil {
			return err
		}
	case "temp_dir":
		cfg.TempDir = ""
		if *value != "" {
			abs, err := filepath.Abs(*value)
			if err != nil {
				return errors.Wrap(err, "Abs")
			}
			cfg.TempDir = abs
		}
	}

	return cfg.Save(dir)
}

func configSecret(dir, key string, value *string, printer progress.Printer) error {
	secrets, err := config.LoadSecrets(dir)
	if err != nil && !errors.Is(err, config.ErrNotConfigured) {
		return err
	}

	if value == nil {
		switch key {
		case "telegram_bot_token":
			printer.P("%v", secrets.TelegramBotToken)
		case "authorized_user_id":
			printer.P("%d", secrets.AuthorizedUserID)
		}
		return nil
	}

	switch key {
	case "telegram_bot_token":
		token := strings.TrimSpace(*value)
		if token == "" {
			return errors.Fatal("an empty bot token is not allowed")
		}
		secrets.TelegramBotToken = options.NewSecretString(token)
	case "authorized_user_id":
		id, err := strconv.ParseInt(*value, 10, 64)
		if err != nil || id <= 0 {
			return errors.Fatalf("invalid user id %q", *value)
		}
		secrets.AuthorizedUserID = id
	}

	return secrets.Save(dir)
}
