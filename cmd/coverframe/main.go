// Package main is the entry point for the coverframe application.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/joe/coverframe/internal/catalog"
	"github.com/joe/coverframe/internal/config"
	"github.com/joe/coverframe/internal/display"
	"github.com/joe/coverframe/internal/logger"
	"github.com/joe/coverframe/internal/runner"
	apperrors "github.com/joe/coverframe/pkg/errors"
	"github.com/joe/coverframe/pkg/filesystem"
)

func main() {
	// Parse configuration
	cfg, err := config.ParseFlags()
	if errors.Is(err, config.ErrConfigCreated) {
		fmt.Printf("%v. Fill it out and run again.\n", err) //nolint:forbidigo // User-facing message
		return
	}

	if err != nil {
		fail(err)
	}

	log, closer, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogOutput})
	if err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = run(ctx, cfg, log)

	stop()
	_ = closer.Close()

	if err != nil {
		fail(err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	extensions := cfg.File.Extensions
	if len(extensions) == 0 {
		extensions = catalog.DefaultExtensions
	}

	cycle, err := catalog.NewCycle(catalog.Options{
		Rules:      cfg.Matchers,
		Order:      cfg.Order,
		Extensions: extensions,
		Rand:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // Picking pictures
		Log:        log,
	})
	if err != nil {
		return err
	}

	displays := display.Multi{display.NewFileDisplay(cfg.Output, extensions)}
	if cfg.Console {
		displays = append(displays, display.NewConsoleDisplay(os.Stdout))
	}

	r, err := runner.New(runner.Config{
		Cycle:    cycle,
		Opener:   filesystem.NewTargetOpener(cfg.Target),
		Display:  displays,
		Interval: cfg.Interval,
		ListRate: cfg.File.ListRate,
		Log:      log,
	})
	if err != nil {
		return err
	}

	log.Info("starting",
		"server", cfg.Target.String(),
		"matchers", len(cfg.Matchers),
		"order", cfg.Order.String(),
		"interval", cfg.Interval,
	)

	if cfg.Once {
		_, err := r.RunOnce(ctx, catalog.SelectionState{})
		return err
	}

	return r.Run(ctx)
}

func fail(err error) {
	enriched := apperrors.NewEnricher().Enrich(err, "")

	fmt.Fprintf(os.Stderr, "Error: %v\n", enriched)

	if suggestions := apperrors.FormatSuggestions(enriched); suggestions != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestions:\n%s\n", suggestions)
	}

	os.Exit(1)
}
