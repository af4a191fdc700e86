package resilience

import (
	"errors"
	"testing"
	"time"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func newTestBreaker(threshold int) (*Breaker, *fakeNow, *[]string) {
	clock := &fakeNow{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	var changes []string
	b := NewBreaker(BreakerConfig{
		Threshold: threshold,
		Cooldown:  time.Minute,
		OnChange: func(from, to BreakerState) {
			changes = append(changes, from.String()+"->"+to.String())
		},
	})
	b.now = clock.now
	return b, clock, &changes
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _, _ := newTestBreaker(3)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("attempt %d rejected: %v", i, err)
		}
		b.Record(boom)
	}
	if b.State() != Closed {
		t.Fatalf("expected closed after 2 failures, got %s", b.State())
	}

	b.Record(boom)
	if b.State() != Open {
		t.Fatalf("expected open after 3 failures, got %s", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b, _, _ := newTestBreaker(3)
	b.Record(errors.New("a"))
	b.Record(errors.New("b"))
	b.Record(nil)
	if b.Failures() != 0 {
		t.Fatalf("expected failures reset, got %d", b.Failures())
	}
	b.Record(errors.New("c"))
	if b.State() != Closed {
		t.Fatalf("expected closed, got %s", b.State())
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b, clock, changes := newTestBreaker(1)
	b.Record(errors.New("down"))
	if b.State() != Open {
		t.Fatalf("expected open, got %s", b.State())
	}

	clock.t = clock.t.Add(time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	if b.State() != HalfOpen {
		t.Fatalf("expected half-open, got %s", b.State())
	}

	b.Record(errors.New("still down"))
	if b.State() != Open {
		t.Fatalf("failed probe should reopen, got %s", b.State())
	}

	clock.t = clock.t.Add(time.Minute)
	_ = b.Allow()
	b.Record(nil)
	if b.State() != Closed {
		t.Fatalf("successful probe should close, got %s", b.State())
	}

	want := []string{"closed->open", "open->half-open", "half-open->open", "open->half-open", "half-open->closed"}
	if len(*changes) != len(want) {
		t.Fatalf("transitions = %v, want %v", *changes, want)
	}
	for i := range want {
		if (*changes)[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, (*changes)[i], want[i])
		}
	}
}

func TestBreaker_CountsFilter(t *testing.T) {
	ignored := errors.New("not found")
	b := NewBreaker(BreakerConfig{Threshold: 1, Counts: func(err error) bool { return !errors.Is(err, ignored) }})
	b.Record(ignored)
	if b.State() != Closed {
		t.Fatalf("ignored error tripped the breaker")
	}
}

func TestBreakerState_String(t *testing.T) {
	for s, want := range map[BreakerState]string{Closed: "closed", Open: "open", HalfOpen: "half-open", 9: "unknown"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
