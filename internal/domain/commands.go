package domain

// NewTicket is the input of a ticket creation. TicketType carries a backend
// type key such as "bug".
type NewTicket struct {
	Title       string
	Description string
	TicketType  Variant
	CreatedBy   int64
	Priority    int64
}

// TicketChanges lists the ticket fields to overwrite. Nil fields are kept.
type TicketChanges struct {
	Title       *string
	Description *string
	TicketType  *Variant
	Priority    *int64
}

// Empty reports whether no field would change.
func (c TicketChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.TicketType == nil && c.Priority == nil
}

// UserChanges lists the user fields to overwrite. Nil fields are kept.
type UserChanges struct {
	Name  *string
	Email *string
}

// Empty reports whether no field would change.
func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Email == nil
}
