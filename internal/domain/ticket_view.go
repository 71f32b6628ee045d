package domain

import "time"

// StatusLabel is the closed vocabulary the UI renders for ticket status.
type StatusLabel string

const (
	StatusOpen     StatusLabel = "open"
	StatusOnGoing  StatusLabel = "on-going"
	StatusOnHold   StatusLabel = "on-hold"
	StatusResolved StatusLabel = "resolved"
	StatusClosed   StatusLabel = "closed"
)

// StatusLabels lists every label in display order.
var StatusLabels = []StatusLabel{StatusOpen, StatusOnGoing, StatusOnHold, StatusResolved, StatusClosed}

// PriorityTier groups the 1-5 priority scale into two buckets.
type PriorityTier string

const (
	TierHigh   PriorityTier = "high"
	TierNormal PriorityTier = "normal"
)

// TicketView is a display-safe ticket. Every field always holds a value.
type TicketView struct {
	ID                int64
	Title             string
	Description       string
	StatusLabel       StatusLabel
	TypeLabel         string
	Priority          int64
	PriorityTier      PriorityTier
	CreatedByID       int64
	CreatedByName     string
	CreatedByEmail    string
	AssigneeID        int64
	AssigneeName      string
	AssigneeEmail     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ResolvedAt        time.Time
	CreatedAtDisplay  string
	UpdatedAtDisplay  string
	ResolvedAtDisplay string
	MessageCount      int
	Messages          []MessageView

	// Diagnostic holds the failure text of a record that could not be built.
	Diagnostic string
}

// Valid reports whether the ticket may be shown in filtered views.
func (t TicketView) Valid() bool {
	return t.ID > 0 && t.Diagnostic == ""
}

// MessageView is a display-safe thread entry.
type MessageView struct {
	ID               int64
	UserID           int64
	AuthorName       string
	Content          string
	CreatedAtDisplay string
}

// UserView is a display-safe user.
type UserView struct {
	ID               int64
	Name             string
	Email            string
	CreatedAtDisplay string
}
