package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls.Add(1)
	return errors.New("backend offline")
}

func TestSnapshotRefresherStopsWithContext(t *testing.T) {
	refresher := &countingRefresher{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartSnapshotRefresher(ctx, refresher, 5*time.Millisecond, zap.NewNop())

	deadline := time.After(2 * time.Second)
	for refresher.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("refresher never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
}

func TestSnapshotRefresherDisabled(t *testing.T) {
	done := StartSnapshotRefresher(context.Background(), &countingRefresher{}, 0, zap.NewNop())
	select {
	case <-done:
	default:
		t.Fatal("expected a closed channel when disabled")
	}
}
