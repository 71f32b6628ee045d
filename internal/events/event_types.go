package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSnapshotFetched          EventType = "snapshot_fetched"
	EventTicketMalformed          EventType = "ticket_malformed"
	EventTicketStatusRequested    EventType = "ticket_status_requested"
	EventTicketAssignRequested    EventType = "ticket_assign_requested"
	EventTicketMessagePosted      EventType = "ticket_message_posted"
	EventSnapshotInvalidateFailed EventType = "snapshot_invalidate_failed"
	EventTicketCreated            EventType = "ticket_created"
	EventTicketUpdated            EventType = "ticket_updated"
	EventTicketDeleted            EventType = "ticket_deleted"
	EventUserCreated              EventType = "user_created"
	EventUserUpdated              EventType = "user_updated"
	EventUserDeleted              EventType = "user_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	// Kind is "service" for events the view layer raises on its own.
	Kind   string `json:"kind"`
	UserID *int64 `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// SnapshotFetchedPayload summarises one fetch of both collections.
type SnapshotFetchedPayload struct {
	Tickets   int `json:"tickets"`
	Users     int `json:"users"`
	Malformed int `json:"malformed"`
}

// TicketMalformedPayload carries the diagnostic of a record that failed to build.
type TicketMalformedPayload struct {
	Diagnostic string `json:"diagnostic"`
}

// TicketStatusRequestedPayload payload.
type TicketStatusRequestedPayload struct {
	Status string `json:"status"`
}

// TicketAssignRequestedPayload payload. A nil assignee clears the assignment.
type TicketAssignRequestedPayload struct {
	AssigneeID *int64 `json:"assignee_id,omitempty"`
}

// TicketMessagePostedPayload payload.
type TicketMessagePostedPayload struct {
	BodyPreview string `json:"body_preview"`
}

// SnapshotInvalidateFailedPayload payload.
type SnapshotInvalidateFailedPayload struct {
	Error string `json:"error"`
}

// TicketCreatedPayload payload. TicketID on the event is zero when the
// backend did not echo the new record.
type TicketCreatedPayload struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Priority int64  `json:"priority"`
}

// TicketUpdatedPayload names the fields that were sent.
type TicketUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// UserChangedPayload is shared by the user events.
type UserChangedPayload struct {
	UserID int64    `json:"user_id"`
	Fields []string `json:"fields,omitempty"`
}
