package retry

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDo_SucceedsOnThirdAttempt(t *testing.T) {
	var calls atomic.Int32
	op := func(ctx context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}
	got, err := Do(context.Background(), op, 3, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q", got)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("op invoked %d times, want 3", n)
	}
}

func TestDo_TimeoutsExhaust(t *testing.T) {
	var calls atomic.Int32
	op := func(ctx context.Context) (int, error) {
		calls.Add(1)
		select {
		case <-time.After(time.Second):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	_, err := Do(context.Background(), op, 3, 20*time.Millisecond)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("op invoked %d times, want 3", n)
	}
}

func TestDo_FirstSuccessStops(t *testing.T) {
	var calls atomic.Int32
	op := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}
	got, err := Do(context.Background(), op, 5, time.Second)
	if err != nil || got != 42 {
		t.Fatalf("got %d, %v", got, err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("op invoked %d times, want 1", n)
	}
}

func TestDo_ParentCancelStopsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	op := func(ctx context.Context) (int, error) {
		calls.Add(1)
		cancel()
		return 0, errors.New("boom")
	}
	_, err := Do(ctx, op, 5, time.Second)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("op invoked %d times after cancel, want 1", n)
	}
	// the error reports the attempts actually made, not the configured max
	if !strings.Contains(err.Error(), "after 1 attempts") {
		t.Fatalf("error reports wrong attempt count: %v", err)
	}
}
