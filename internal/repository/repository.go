package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/vex-labs/ticket-view/internal/domain"
	"github.com/vex-labs/ticket-view/internal/viewmodel"
)

// TicketRepository fetches the full ticket collection in source order.
type TicketRepository interface {
	FetchAllTickets(ctx context.Context) ([]*domain.RawTicket, error)
}

// UserRepository fetches the full user collection in source order.
type UserRepository interface {
	FetchAllUsers(ctx context.Context) ([]*domain.RawUser, error)
}

// Source is a backend that serves both collections.
type Source interface {
	TicketRepository
	UserRepository
}

// TicketCommander forwards mutations to the service that owns the tickets.
type TicketCommander interface {
	// CreateTicket returns the record the backend created. The record may be
	// nil when the backend answers without a body.
	CreateTicket(ctx context.Context, ticket domain.NewTicket) (*domain.RawTicket, error)
	UpdateTicket(ctx context.Context, ticketID int64, changes domain.TicketChanges) error
	DeleteTicket(ctx context.Context, ticketID int64) error
	UpdateStatus(ctx context.Context, ticketID int64, status domain.Variant) error
	AddMessage(ctx context.Context, ticketID, userID int64, content string) error
	// Assign sets the assignee; a nil assignee clears it.
	Assign(ctx context.Context, ticketID int64, assigneeID *int64) error
}

// UserCommander forwards user mutations. Returned records may be nil when
// the backend answers without a body.
type UserCommander interface {
	CreateUser(ctx context.Context, name, email string) (*domain.RawUser, error)
	UpdateUser(ctx context.Context, userID int64, changes domain.UserChanges) (*domain.RawUser, error)
	DeleteUser(ctx context.Context, userID int64) error
}

// Importer replaces a stored snapshot with the given documents.
type Importer interface {
	Import(ctx context.Context, fixture Fixture) error
}

// ServiceError is a failure talking to the ticket service.
type ServiceError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Fixture is a snapshot of both collections as raw JSON documents.
type Fixture struct {
	Tickets []json.RawMessage `json:"tickets"`
	Users   []json.RawMessage `json:"users"`
}

// ReadFixture decodes a {"tickets": [...], "users": [...]} document.
// Comments and trailing commas are allowed so fixtures can be annotated.
func ReadFixture(r io.Reader) (Fixture, error) {
	var fixture Fixture
	data, err := io.ReadAll(r)
	if err != nil {
		return fixture, fmt.Errorf("read fixture: %w", err)
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &fixture); err != nil {
		return fixture, fmt.Errorf("decode fixture: %w", err)
	}
	return fixture, nil
}

// documentID extracts the coerced id of a stored document for indexing. It
// returns nil when the document has no usable id.
func documentID(doc json.RawMessage) *string {
	var head struct {
		ID domain.WireInt `json:"id"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		return nil
	}
	id := viewmodel.IDOrZero(head.ID)
	if id == 0 {
		return nil
	}
	text := fmt.Sprint(id)
	return &text
}

func decodeTicketRows(payloads [][]byte, table string) []*domain.RawTicket {
	tickets := make([]*domain.RawTicket, 0, len(payloads))
	for i, payload := range payloads {
		tickets = append(tickets, domain.DecodeTicket(payload, fmt.Sprintf("%s row %d", table, i+1)))
	}
	return tickets
}

func decodeUserRows(payloads [][]byte) []*domain.RawUser {
	users := make([]*domain.RawUser, 0, len(payloads))
	for _, payload := range payloads {
		if user := domain.DecodeUser(payload); user != nil {
			users = append(users, user)
		}
	}
	return users
}

func compactDocument(doc json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
