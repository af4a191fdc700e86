package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_NilGuard(t *testing.T) {
	v, err := Do(context.Background(), nil, "op", func(context.Context) (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("got %q, %v", v, err)
	}
}

func TestDo_OpensCircuitAndObserves(t *testing.T) {
	g := NewGuard("store", fastPolicy(2), BreakerConfig{Threshold: 4, Cooldown: time.Hour})
	var observed []string
	g.Observe = func(op string, _ time.Duration, err error) {
		if err != nil {
			observed = append(observed, op+":err")
		} else {
			observed = append(observed, op+":ok")
		}
	}

	calls := 0
	fail := func(context.Context) (int, error) {
		calls++
		return 0, Transient(errors.New("down"), 0)
	}

	// Two guarded calls of two attempts each reach the threshold.
	for i := 0; i < 2; i++ {
		if _, err := Do(context.Background(), g, "search", fail); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", calls)
	}
	if g.Breaker.State() != Open {
		t.Fatalf("expected open, got %s", g.Breaker.State())
	}

	_, err := Do(context.Background(), g, "search", fail)
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("open circuit must not call through, got %d calls", calls)
	}
	if len(observed) != 3 || observed[0] != "search:err" {
		t.Fatalf("observed = %v", observed)
	}
}

func TestExec_IgnoresCancellationForBreaker(t *testing.T) {
	g := NewGuard("store", fastPolicy(1), BreakerConfig{Threshold: 1})
	err := Exec(context.Background(), g, "refresh", func(context.Context) error { return context.Canceled })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if g.Breaker.State() != Closed {
		t.Fatalf("cancellation tripped the breaker")
	}
}
