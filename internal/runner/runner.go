// Package runner drives the poll loop: discover candidates, select one, fetch
// it and hand it to the display.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/joe/coverframe/internal/catalog"
	"github.com/joe/coverframe/internal/display"
	"github.com/joe/coverframe/pkg/filesystem"
)

// Config configures a Runner.
type Config struct {
	Cycle   *catalog.Cycle
	Opener  filesystem.Opener
	Display display.Display

	// Interval is the time between cycles
	Interval time.Duration

	// ListRate caps listing calls per second, 0 disables the limit
	ListRate float64

	Time TimeProvider
	Log  *slog.Logger
}

// Runner runs cycles on a ticker. It is not safe for concurrent use; Run owns
// the selection state.
type Runner struct {
	cfg Config
	log *slog.Logger
}

// New creates a Runner. Zero-valued Time and Log use real time and discard
// output.
func New(cfg Config) (*Runner, error) {
	if cfg.Cycle == nil || cfg.Opener == nil || cfg.Display == nil {
		return nil, fmt.Errorf("%w: runner needs a cycle, an opener and a display", catalog.ErrInvalidConfig)
	}

	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", catalog.ErrInvalidConfig)
	}

	if cfg.Time == nil {
		cfg.Time = RealTimeProvider{}
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Runner{cfg: cfg, log: log}, nil
}

// RunOnce runs a single cycle against a fresh session and returns the state
// for the next one.
//
// The state only advances once the new image is on display. If there are no
// candidates, or fetching or showing fails, the previous state is returned and
// the display is left as it was; a fetch failure is logged, not returned.
func (r *Runner) RunOnce(ctx context.Context, state catalog.SelectionState) (catalog.SelectionState, error) {
	start := r.cfg.Time.Now()

	session, err := r.cfg.Opener.Open(ctx)
	if err != nil {
		return state, fmt.Errorf("failed to open session: %w", err)
	}

	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			r.log.Warn("failed to close session", "error", closeErr)
		}
	}()

	var lister filesystem.Lister = session
	if r.cfg.ListRate > 0 {
		lister = filesystem.NewRateLimitedLister(session, r.cfg.ListRate)
	}

	result, err := r.cfg.Cycle.Run(ctx, lister, state)
	if err != nil {
		return state, err
	}

	if !result.Changed {
		r.log.Info("no candidates found, keeping current image",
			"previous", state.PreviousPath,
			"roots", len(result.Reports),
		)

		return state, nil
	}

	data, err := session.Fetch(ctx, result.Path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return state, ctxErr
		}

		r.log.Error("failed to fetch image, keeping current image", "path", result.Path, "error", err)

		return state, nil
	}

	if err := r.cfg.Display.Show(ctx, display.Image{Path: result.Path, Data: data}); err != nil {
		return state, fmt.Errorf("failed to display %s: %w", result.Path, err)
	}

	r.log.Info("selected image",
		"path", result.Path,
		"index", result.Index,
		"candidates", len(result.Candidates),
		"size", humanize.Bytes(uint64(len(data))),
		"order", r.cfg.Cycle.Order().String(),
		"elapsed", r.cfg.Time.Now().Sub(start),
	)

	return catalog.SelectionState{PreviousPath: result.Path}, nil
}

// Run runs a cycle immediately and then on every tick until ctx is
// cancelled. A failed cycle is logged and retried on the next tick, except
// when it is a configuration error, which can't fix itself.
//
// On cancellation the display is cleared and Run returns nil.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.cfg.Time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	var state catalog.SelectionState

	for {
		next, err := r.RunOnce(ctx, state)

		switch {
		case ctx.Err() != nil:
			return r.clear()
		case errors.Is(err, catalog.ErrInvalidConfig):
			return err
		case err != nil:
			r.log.Error("cycle failed", "error", err, "retry_in", r.cfg.Interval)
		}

		state = next

		select {
		case <-ctx.Done():
			return r.clear()
		case _, ok := <-ticker.C():
			if !ok {
				return r.clear()
			}
		}
	}
}

func (r *Runner) clear() error {
	// ctx is already cancelled
	if err := r.cfg.Display.Clear(context.Background()); err != nil {
		return fmt.Errorf("failed to clear display: %w", err)
	}

	r.log.Info("display cleared")

	return nil
}
