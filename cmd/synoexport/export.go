package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/synotools/synoexport/internal/config"
	"github.com/synotools/synoexport/internal/exporter"
	"github.com/synotools/synoexport/internal/synodrive"
)

// runExport drives one full export pass: log in, walk the drive, print the
// summary. The process exit code is non-zero when any file failed.
func runExport(ctx context.Context, cfg *config.Config) error {
	drive, err := synodrive.New(cfg.ServerURL, &synodrive.Options{
		Insecure: cfg.Insecure,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return err
	}

	slog.Info("connecting", "server", cfg.ServerURL, "user", cfg.Username)
	if err := drive.Login(ctx, cfg.Username, cfg.Password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	defer func() {
		// the run context may already be cancelled, end the session regardless
		if err := drive.Logout(context.Background()); err != nil {
			slog.Warn("logout failed", "error", err)
		}
	}()

	exp, err := exporter.New(drive, &exporter.Options{
		OutputDir:   cfg.OutputDir,
		Force:       cfg.Force,
		SkipHistory: cfg.SkipHistory,
	})
	if err != nil {
		return err
	}

	stats, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(os.Stdout, stats)

	if stats.HadFailure() {
		return fmt.Errorf("export finished with %d errors", stats.Errors)
	}
	return nil
}
