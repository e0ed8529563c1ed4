package observability

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"

	"go.uber.org/zap"
)

func TestFlushTelemetry_NilLogger(t *testing.T) {
	if err := FlushTelemetry(context.Background(), nil); err != nil {
		t.Errorf("FlushTelemetry(nil) = %v", err)
	}
}

func TestFlushTelemetry_Nop(t *testing.T) {
	if err := FlushTelemetry(context.Background(), zap.NewNop()); err != nil {
		t.Errorf("FlushTelemetry(nop) = %v", err)
	}
}

func TestFlushTelemetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := FlushTelemetry(ctx, zap.NewNop()); !errors.Is(err, context.Canceled) {
		t.Errorf("FlushTelemetry() = %v, want context.Canceled", err)
	}
}

func TestIgnorableSyncError(t *testing.T) {
	tty := &os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.ENOTTY}
	if !ignorableSyncError(fmt.Errorf("wrapped: %w", tty)) {
		t.Error("ENOTTY should be ignorable")
	}
	if ignorableSyncError(errors.New("disk full")) {
		t.Error("arbitrary error should not be ignorable")
	}
}
