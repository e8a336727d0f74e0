package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// Lifecycle holds the cancel functions of a run context.
type Lifecycle struct {
	cancelTimeout context.CancelFunc
	stopSignals   context.CancelFunc
}

// SetupLifecycle derives a context that ends when timeout expires or when
// SIGINT or SIGTERM arrives, whichever comes first. A non-positive timeout
// leaves only the signal handling in place.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *Lifecycle) {
	lc := &Lifecycle{}
	if timeout > 0 {
		ctx, lc.cancelTimeout = context.WithTimeout(ctx, timeout)
	}
	ctx, lc.stopSignals = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, lc
}

// Cleanup releases the signal handler and the timer. It is safe to call on
// a nil Lifecycle and more than once.
func (lc *Lifecycle) Cleanup() {
	if lc == nil {
		return
	}
	if lc.stopSignals != nil {
		lc.stopSignals()
	}
	if lc.cancelTimeout != nil {
		lc.cancelTimeout()
	}
}
