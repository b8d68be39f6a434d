package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockRecorder struct {
	callCount atomic.Int32
	err       error
}

func (m *mockRecorder) Snapshot(_ context.Context) error {
	m.callCount.Add(1)
	return m.err
}

func TestSnapshotWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockRecorder{}
	w := NewSnapshotWorker(mock, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	// Should have run at least the initial snapshot + some ticks
	if got := mock.callCount.Load(); got < 1 {
		t.Errorf("call count = %d, want >= 1", got)
	}
}

func TestSnapshotWorkerKeepsRunningOnError(t *testing.T) {
	mock := &mockRecorder{err: errors.New("boom")}
	w := NewSnapshotWorker(mock, 30*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := mock.callCount.Load(); got < 2 {
		t.Errorf("call count = %d, want >= 2 despite errors", got)
	}
}
