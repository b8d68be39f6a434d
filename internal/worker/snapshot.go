// Package worker runs the background loop behind the watch command.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// SnapshotRecorder takes one net-worth snapshot.
type SnapshotRecorder interface {
	Snapshot(ctx context.Context) error
}

// SnapshotWorker periodically records net-worth snapshots.
type SnapshotWorker struct {
	recorder SnapshotRecorder
	interval time.Duration
}

// NewSnapshotWorker creates a new SnapshotWorker.
func NewSnapshotWorker(recorder SnapshotRecorder, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		recorder: recorder,
		interval: interval,
	}
}

// Run starts the worker loop. It blocks until the context is cancelled.
func (w *SnapshotWorker) Run(ctx context.Context) {
	slog.Info("SnapshotWorker: starting", "interval", w.interval)

	// Record immediately on startup
	if err := w.recorder.Snapshot(ctx); err != nil {
		slog.Error("SnapshotWorker: initial snapshot failed", "error", err)
	} else {
		slog.Info("SnapshotWorker: initial snapshot completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("SnapshotWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.recorder.Snapshot(ctx); err != nil {
				slog.Error("SnapshotWorker: snapshot failed", "error", err)
			} else {
				slog.Info("SnapshotWorker: snapshot completed")
			}
		}
	}
}
