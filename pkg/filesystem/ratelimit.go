package filesystem

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedLister spaces out listing calls so a full walk of a large tree
// doesn't flood a small home server. Fetch is not limited.
type RateLimitedLister struct {
	inner   Lister
	limiter *rate.Limiter
}

// NewRateLimitedLister wraps inner so at most perSecond List calls start each
// second. A perSecond of zero or less returns inner unchanged.
func NewRateLimitedLister(inner Lister, perSecond float64) Lister {
	if perSecond <= 0 {
		return inner
	}

	return &RateLimitedLister{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// List waits for the limiter and then lists dir.
func (l *RateLimitedLister) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting to list %s: %w", dir, err)
	}

	return l.inner.List(ctx, dir)
}
