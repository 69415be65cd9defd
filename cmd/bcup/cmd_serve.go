package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bcup/bcup/internal/config"
	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/telegram"
	"github.com/bcup/bcup/internal/transport"
	"github.com/bcup/bcup/internal/ui/progress"
)

func newServeCommand() *cobra.Command {
	var opts ServeOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Wait for backup requests sent to the bot",
		Long: `
The "serve" command waits for messages to the bot. When the authorized user
sends /backup, the configured paths are archived and the archive is sent back.
Messages from other users are refused. The configuration is read again for
every backup.

Only one backup runs at a time. A request which arrives while a backup is
running is queued, further requests are refused until the queue is empty.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
Exit status is 130 if the command was interrupted.
`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, globalOptions, args, newTextPrinter(globalOptions))
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// ServeOptions bundles all options for the serve command.
type ServeOptions struct {
	PollTimeout time.Duration
}

func (opts *ServeOptions) AddFlags(f *pflag.FlagSet) {
	f.DurationVar(&opts.PollTimeout, "poll-timeout", 50*time.Second, "how long a single request waits for new messages")
}

const (
	msgUnauthorized = "⛔ Unauthorized access!"
	msgHelp         = "Send /backup to receive an archive of the configured paths."
	msgStarted      = "⏳ Backup started"
	msgQueued       = "A backup is already running, yours will start afterwards."
	msgBusy         = "A backup is already queued, try again later."
	msgUnknown      = "Unknown command, send /help for a list of commands."
)

// bot is the part of the Telegram client used by the server.
type bot interface {
	transport.Sender
	GetUpdates(ctx context.Context, offset int64, wait time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

var pollRetryDelay = 5 * time.Second

type server struct {
	bot        bot
	authorized int64
	wait       time.Duration
	loadConfig func() (config.AppConfig, error)
	printer    progress.Printer

	jobs    chan *telegram.Message
	running chan struct{}
}

func newServer(b bot, authorized int64, wait time.Duration, loadConfig func() (config.AppConfig, error), printer progress.Printer) *server {
	return &server{
		bot:        b,
		authorized: authorized,
		wait:       wait,
		loadConfig: loadConfig,
		printer:    printer,
		jobs:       make(chan *telegram.Message, 1),
		running:    make(chan struct{}, 1),
	}
}

func runServe(ctx context.Context, opts ServeOptions, gopts GlobalOptions, args []string, printer progress.Printer) error {
	if len(args) > 0 {
		return errors.Fatal("the serve command expects no arguments")
	}
	if opts.PollTimeout < time.Second {
		return errors.Fatal("--poll-timeout must be at least one second")
	}

	dir, cfg, err := gopts.loadConfig()
	if err != nil {
		return err
	}
	secrets, err := gopts.loadSecrets(dir)
	if err != nil {
		return err
	}

	// requests always arrive through the bot, whatever the destination is
	cfg.Destination = config.DestinationTelegram
	sender, err := transport.ForDestination(cfg, secrets, gopts.transportOptions())
	if err != nil {
		return err
	}
	client := sender.(*telegram.Client)

	me, err := client.GetMe(ctx)
	if err != nil {
		if telegram.IsUnauthorized(err) {
			return errors.Fatal("the Telegram bot token was rejected")
		}
		return err
	}
	printer.P("waiting for requests to @%v from user %d", me.Username, secrets.AuthorizedUserID)

	srv := newServer(client, secrets.AuthorizedUserID, opts.PollTimeout, func() (config.AppConfig, error) {
		_, cfg, err := gopts.loadConfig()
		return cfg, err
	}, printer)
	return srv.run(ctx)
}

func (s *server) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.poll(ctx) })
	g.Go(func() error { return s.work(ctx) })
	return g.Wait()
}

// poll fetches updates until ctx is canceled.
func (s *server) poll(ctx context.Context) error {
	var offset int64
	for {
		updates, err := s.bot.GetUpdates(ctx, offset, s.wait)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if telegram.IsUnauthorized(err) {
				return errors.Fatal("the Telegram bot token was rejected")
			}

			s.printer.E("unable to fetch updates, retrying in %v: %v", pollRetryDelay, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil {
				continue
			}
			if err := s.handle(ctx, u.Message); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.printer.E("unable to answer message %d: %v", u.Message.MessageID, err)
			}
		}
	}
}

// handle answers a single message. Backups are handed to the worker.
func (s *server) handle(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil || msg.From.ID != s.authorized {
		var from int64
		if msg.From != nil {
			from = msg.From.ID
		}
		debug.Log("refusing message %d from user %d", msg.MessageID, from)
		s.printer.V("refused message from user %d", from)
		return s.bot.SendMessage(ctx, msg.Chat.ID, msgUnauthorized)
	}

	switch msg.Command() {
	case "/backup":
		select {
		case s.jobs <- msg:
			if len(s.running) > 0 {
				return s.bot.SendMessage(ctx, msg.Chat.ID, msgQueued)
			}
			return nil
		default:
			return s.bot.SendMessage(ctx, msg.Chat.ID, msgBusy)
		}
	case "/start", "/help":
		return s.bot.SendMessage(ctx, msg.Chat.ID, msgHelp)
	default:
		return s.bot.SendMessage(ctx, msg.Chat.ID, msgUnknown)
	}
}

// work runs queued backups one after another.
func (s *server) work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-s.jobs:
			s.running <- struct{}{}
			err := s.backup(ctx, msg)
			<-s.running
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				s.printer.E("backup requested by message %d failed: %v", msg.MessageID, err)
				_ = s.bot.SendMessage(ctx, msg.Chat.ID, "❌ Backup failed: "+errors.FatalMessage(err))
			}
		}
	}
}

func (s *server) backup(ctx context.Context, msg *telegram.Message) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}

	if err := s.bot.SendMessage(ctx, msg.Chat.ID, msgStarted); err != nil {
		debug.Log("unable to confirm message %d: %v", msg.MessageID, err)
	}

	cfg.Destination = config.DestinationTelegram
	caption := defaultCaption() + ", requested at " + time.Unix(msg.Date, 0).Format("2006-01-02 15:04:05")
	return backupAndSend(ctx, cfg, cfg.Paths, s.bot, caption, s.printer)
}
