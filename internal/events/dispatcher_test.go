package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventTicketMalformed, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("sink offline")
	})
	d.Subscribe(EventTicketMalformed, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventSnapshotFetched, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketMalformed})
	if err == nil || err.Error() != "ticket_malformed handler: sink offline" {
		t.Fatalf("unexpected error %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestDispatcherWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventTicketMessagePosted}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
