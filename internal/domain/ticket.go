package domain

// RawTicket is a ticket as returned by the VEX backend. Every field is
// optional and may be malformed; nothing here is trusted.
type RawTicket struct {
	ID          WireInt     `json:"id"`
	Title       WireText    `json:"title"`
	Description WireText    `json:"description"`
	Status      Variant     `json:"status"`
	TicketType  Variant     `json:"ticket_type"`
	Priority    WireInt     `json:"priority"`
	CreatedBy   WireInt     `json:"created_by"`
	AssigneeID  WireInt     `json:"assignee_id"`
	CreatedAt   WireInt     `json:"created_at"`
	UpdatedAt   WireInt     `json:"updated_at"`
	ResolvedAt  WireInt     `json:"resolved_at"`
	Messages    MessageList `json:"messages"`

	// DecodeError is set when the record itself could not be decoded, for
	// example when the backend sent a number where an object belongs.
	DecodeError string `json:"-"`
}
