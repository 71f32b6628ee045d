package observability

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordError("/tickets/:id", "GET", "NOT_FOUND")
	m.RecordEvent("ticket.malformed")

	snap := m.Snapshot()
	if len(snap.Requests) != 1 || snap.Requests[0].Key != "/tickets|GET|200" || snap.Requests[0].Count != 2 {
		t.Fatalf("unexpected requests %+v", snap.Requests)
	}
	if got := snap.AvgLatencyMillis["/tickets|GET|200"]; got != 20 {
		t.Fatalf("unexpected latency %v", got)
	}
	if len(snap.Errors) != 1 || snap.Errors[0].Count != 1 {
		t.Fatalf("unexpected errors %+v", snap.Errors)
	}
	if len(snap.Events) != 1 || snap.Events[0].Key != "ticket.malformed" {
		t.Fatalf("unexpected events %+v", snap.Events)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordEvent("x")
	if snap := m.Snapshot(); len(snap.Requests) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricsConcurrentUse(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRequest("/stats", "GET", 200, time.Millisecond)
		}()
	}
	wg.Wait()
	if snap := m.Snapshot(); snap.Requests[0].Count != 50 {
		t.Fatalf("expected 50 requests, got %+v", snap.Requests)
	}
}
