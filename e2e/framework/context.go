package framework

import (
	"context"

	"github.com/gravitational/trace"
)

type worldKey struct{}

// WithWorld returns a copy of ctx carrying w
func WithWorld(ctx context.Context, w *World) context.Context {
	return context.WithValue(ctx, worldKey{}, w)
}

// WorldFrom returns the scenario world stored in ctx
func WorldFrom(ctx context.Context) (*World, error) {
	w, ok := ctx.Value(worldKey{}).(*World)
	if !ok || w == nil {
		return nil, trace.NotFound("no scenario context")
	}
	return w, nil
}

type stepKey struct{}

// stepScope is what a step hook needs to restore once the step is done
type stepScope struct {
	parent context.Context
	cancel context.CancelFunc
}
