package lifecycle

import (
	"sync/atomic"
	"time"
)

var shutdownStarted atomic.Pointer[time.Time]

// BeginShutdown marks the process as draining from at onwards. Call when
// SIGTERM/SIGINT is received; only the first call records a time.
// Health handler returns 503 with status shutting-down from then on.
func BeginShutdown(at time.Time) {
	shutdownStarted.CompareAndSwap(nil, &at)
}

// IsShuttingDown returns true if the process is draining and should not receive new forecasts.
func IsShuttingDown() bool {
	return shutdownStarted.Load() != nil
}

// ShutdownStarted returns when draining began.
func ShutdownStarted() (time.Time, bool) {
	if at := shutdownStarted.Load(); at != nil {
		return *at, true
	}
	return time.Time{}, false
}

// Reset clears the shutdown mark. Tests only.
func Reset() {
	shutdownStarted.Store(nil)
}
