package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestInFlightCounter_BeginDone(t *testing.T) {
	c := newInFlightCounter(nil)

	done1 := c.begin()
	done2 := c.begin()
	if got := c.count(); got != 2 {
		t.Errorf("count() = %d, want 2", got)
	}
	done1()
	done2()
	if got := c.count(); got != 0 {
		t.Errorf("count() = %d, want 0", got)
	}
}

func TestInFlightCounter_WaitForZeroIdle(t *testing.T) {
	c := newInFlightCounter(clockwork.NewFakeClock())
	if err := c.waitForZero(context.Background(), time.Second); err != nil {
		t.Errorf("waitForZero() on idle counter = %v", err)
	}
}

func TestInFlightCounter_WaitForZeroDrains(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newInFlightCounter(clock)
	done := c.begin()

	errCh := make(chan error, 1)
	go func() { errCh <- c.waitForZero(context.Background(), 100*time.Millisecond) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("ticker never armed: %v", err)
	}
	done()
	clock.Advance(100 * time.Millisecond)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("waitForZero() = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waitForZero did not return after the last request finished")
	}
}

func TestInFlightCounter_WaitForZeroContextCanceled(t *testing.T) {
	c := newInFlightCounter(clockwork.NewFakeClock())
	done := c.begin()
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.waitForZero(ctx, time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Errorf("waitForZero() = %v, want context.Canceled", err)
	}
}
