package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joe/coverframe/pkg/filesystem"
)

// Options configure a Cycle.
type Options struct {
	Rules      []MatchRule
	Order      SortOrder
	Extensions []string
	Rand       Rand
	Log        *slog.Logger
}

// Cycle combines every match rule into one candidate list and selects from it.
// It is built once from configuration and run once per poll; it keeps no
// state between runs.
type Cycle struct {
	matchers []*Matcher
	order    SortOrder
	rng      Rand
	log      *slog.Logger
}

// Result is the outcome of one Run.
type Result struct {
	Selection

	// Candidates is the merged candidate list in rule declaration order
	Candidates []string

	// Reports holds one report per rule whose root was listed or pruned
	Reports []WalkReport

	// RootErrors holds the rules whose root could not be listed
	RootErrors []*RootError
}

// NewCycle compiles every rule and checks the sort order, so configuration
// errors surface before any transport call.
func NewCycle(opts Options) (*Cycle, error) {
	if len(opts.Rules) == 0 {
		return nil, fmt.Errorf("%w: no match rules configured", ErrInvalidConfig)
	}

	if !opts.Order.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSortOrder, int(opts.Order))
	}

	if opts.Order == Random && opts.Rand == nil {
		return nil, fmt.Errorf("%w: random order needs a random source", ErrInvalidConfig)
	}

	matchers := make([]*Matcher, 0, len(opts.Rules))
	for _, rule := range opts.Rules {
		m, err := NewMatcher(rule, opts.Extensions)
		if err != nil {
			return nil, err
		}

		matchers = append(matchers, m)
	}

	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Cycle{
		matchers: matchers,
		order:    opts.Order,
		rng:      opts.Rand,
		log:      log,
	}, nil
}

// Order returns the configured sort order.
func (c *Cycle) Order() SortOrder {
	return c.order
}

// Run walks every rule in declaration order through lister, concatenates the
// candidate lists without re-sorting across roots, and selects once.
//
// A rule whose root can't be listed is skipped and reported in
// Result.RootErrors. If every rule fails that way Run returns
// ErrAllRootsFailed, which is distinct from a successful walk that found
// nothing (an unchanged Selection with a nil error).
func (c *Cycle) Run(ctx context.Context, lister filesystem.Lister, state SelectionState) (Result, error) {
	walker := NewWalker(lister, c.log)

	var result Result

	result.Candidates = make([]string, 0)

	for _, m := range c.matchers {
		candidates, report, err := walker.Walk(ctx, m)
		if err != nil {
			var rootErr *RootError
			if !errors.As(err, &rootErr) {
				return Result{}, err
			}

			c.log.Error("match rule root unreachable", "root", rootErr.Root, "error", rootErr.Err)
			result.RootErrors = append(result.RootErrors, rootErr)

			continue
		}

		c.log.Debug("walked match rule",
			"root", report.Root,
			"candidates", len(candidates),
			"listed", report.Listed,
			"pruned", len(report.Pruned),
			"skipped", len(report.Skipped),
		)

		result.Reports = append(result.Reports, report)
		result.Candidates = append(result.Candidates, candidates...)
	}

	if len(result.RootErrors) == len(c.matchers) {
		errs := make([]error, 0, len(result.RootErrors)+1)
		errs = append(errs, ErrAllRootsFailed)
		for _, rootErr := range result.RootErrors {
			errs = append(errs, rootErr)
		}

		return result, errors.Join(errs...)
	}

	selection, err := Select(result.Candidates, state, c.order, c.rng)
	if err != nil {
		return result, err
	}

	result.Selection = selection

	return result, nil
}
