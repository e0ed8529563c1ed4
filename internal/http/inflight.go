package http

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kjstillabower/overnight-forecast-service/internal/observability"
)

// inFlightCounter counts requests between MetricsMiddleware entry and exit so
// shutdown can drain them after the listener closes.
type inFlightCounter struct {
	n     atomic.Int64
	clock clockwork.Clock
}

func newInFlightCounter(clock clockwork.Clock) *inFlightCounter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &inFlightCounter{clock: clock}
}

// begin marks a request as started and mirrors it on the in-flight gauge.
// The returned func must be called exactly once.
func (c *inFlightCounter) begin() (done func()) {
	c.n.Add(1)
	observability.HTTPRequestsInFlight.Inc()
	return func() {
		observability.HTTPRequestsInFlight.Dec()
		c.n.Add(-1)
	}
}

func (c *inFlightCounter) count() int64 {
	return c.n.Load()
}

// waitForZero polls every interval until no request is in flight or ctx is done.
func (c *inFlightCounter) waitForZero(ctx context.Context, interval time.Duration) error {
	if c.count() == 0 {
		return nil
	}
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if c.count() == 0 {
				return nil
			}
		}
	}
}

var requestsInFlight = newInFlightCounter(nil)

// InFlightCount returns the number of requests currently being served.
func InFlightCount() int64 {
	return requestsInFlight.count()
}

// WaitForInFlight blocks until in-flight forecast, lookup and export requests
// finish or ctx is done.
func WaitForInFlight(ctx context.Context, checkInterval time.Duration) error {
	return requestsInFlight.waitForZero(ctx, checkInterval)
}
