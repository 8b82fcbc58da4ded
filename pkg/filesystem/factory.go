package filesystem

import (
	"context"
	"fmt"
)

// Opener opens a new Session. The runner calls it once per poll cycle.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context) (Session, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context) (Session, error) {
	return f(ctx)
}

// TargetOpener opens sessions against a parsed Target.
type TargetOpener struct {
	Target *Target
}

// NewTargetOpener creates an Opener for the given target.
func NewTargetOpener(target *Target) *TargetOpener {
	return &TargetOpener{Target: target}
}

// Open connects to the target using the transport its scheme names.
func (o *TargetOpener) Open(ctx context.Context) (Session, error) {
	switch o.Target.Scheme {
	case SchemeLocal:
		return NewLocalSession(), nil
	case SchemeSFTP:
		session, err := ConnectSFTP(ctx, o.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", o.Target, err)
		}

		return session, nil
	case SchemeFTP:
		session, err := ConnectFTP(ctx, o.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", o.Target, err)
		}

		return session, nil
	default:
		return nil, fmt.Errorf("unsupported scheme %q", o.Target.Scheme) //nolint:err113 // Validation error with actual value
	}
}
