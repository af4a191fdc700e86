package resilience

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Guard wraps every call to one dependency with a breaker and a retry
// policy. Observe, when set, sees each guarded call once with its total
// duration and final error.
type Guard struct {
	Name    string
	Policy  Policy
	Breaker *Breaker
	Observe func(op string, d time.Duration, err error)
}

// NewGuard creates a Guard whose breaker logs its transitions and ignores
// caller cancellation.
func NewGuard(name string, p Policy, cfg BreakerConfig) *Guard {
	if cfg.OnChange == nil {
		cfg.OnChange = func(from, to BreakerState) {
			zap.L().Warn("resilience: circuit state change",
				zap.String("dependency", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		}
	}
	if cfg.Counts == nil {
		cfg.Counts = func(err error) bool { return !errors.Is(err, context.Canceled) }
	}
	return &Guard{Name: name, Policy: p, Breaker: NewBreaker(cfg)}
}

// Do runs fn under g. Each attempt passes through the breaker, so an open
// circuit ends the retries. A nil Guard calls fn directly.
func Do[T any](ctx context.Context, g *Guard, op string, fn func(context.Context) (T, error)) (T, error) {
	if g == nil {
		return fn(ctx)
	}
	start := time.Now()
	v, err := Retry(ctx, g.Policy, g.Name+"."+op, func(ctx context.Context) (T, error) {
		if g.Breaker != nil {
			if err := g.Breaker.Allow(); err != nil {
				var zero T
				return zero, err
			}
		}
		v, err := fn(ctx)
		if g.Breaker != nil {
			g.Breaker.Record(err)
		}
		return v, err
	})
	if g.Observe != nil {
		g.Observe(op, time.Since(start), err)
	}
	return v, err
}

// Exec is Do for calls without a result.
func Exec(ctx context.Context, g *Guard, op string, fn func(context.Context) error) error {
	_, err := Do(ctx, g, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
