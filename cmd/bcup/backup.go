package main

import (
	"context"
	"time"

	"github.com/bcup/bcup/internal/archiver"
	"github.com/bcup/bcup/internal/config"
	"github.com/bcup/bcup/internal/debug"
	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/transport"
	"github.com/bcup/bcup/internal/ui"
	"github.com/bcup/bcup/internal/ui/progress"
)

// buildArchive archives paths according to cfg. The caller must remove the
// returned artifact.
func buildArchive(ctx context.Context, cfg config.AppConfig, paths []string, printer progress.Printer) (*archiver.Artifact, error) {
	if len(paths) == 0 {
		return nil, errors.Fatal("no paths configured, add some with `bcup config add_path <path>`")
	}

	for _, p := range paths {
		printer.V("adding %v", ui.Quote(p))
	}

	counter := printer.NewCounter("archived")
	b := &archiver.Builder{
		TempDir:     cfg.TempDir,
		Compression: cfg.Compression,
		Progress:    counter,
	}

	start := time.Now()
	art, err := b.Build(ctx, paths)
	counter.Done()
	if err != nil {
		return nil, err
	}

	printer.P("archived %d files, %s (%s compressed) in %s",
		art.Entries(), ui.FormatBytes(art.Bytes()), ui.FormatBytes(uint64(art.Size())),
		ui.FormatDuration(time.Since(start)))
	printer.V("archive %v, xxh64 %v", art.Name(), art.Checksum())
	return art, nil
}

// backupAndSend builds an archive of paths and delivers it with sender. The
// archive is removed afterwards, whether sending succeeded or not.
func backupAndSend(ctx context.Context, cfg config.AppConfig, paths []string, sender transport.Sender, caption string, printer progress.Printer) error {
	art, err := buildArchive(ctx, cfg, paths, printer)
	if err != nil {
		return err
	}
	defer func() {
		if err := art.Remove(); err != nil {
			debug.Log("unable to remove %v: %v", art.Name(), err)
			printer.E("unable to remove temporary archive %v: %v", art.Name(), err)
		}
	}()

	start := time.Now()
	if err := transport.Deliver(ctx, cfg.Destination, sender, art, caption); err != nil {
		return err
	}

	printer.P("sent %s to %v in %s", ui.FormatBytes(uint64(art.Size())), cfg.Destination, ui.FormatDuration(time.Since(start)))
	return nil
}
