package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vex-labs/ticket-view/internal/domain"
)

// SQLiteStore serves tickets and users from a local fixture database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an opened database carrying the mirror schema.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// FetchAllTickets implements TicketRepository.
func (s *SQLiteStore) FetchAllTickets(ctx context.Context) ([]*domain.RawTicket, error) {
	payloads, err := s.payloads(ctx, `SELECT payload FROM vex_tickets ORDER BY position`)
	if err != nil {
		return nil, &ServiceError{Op: "fetch tickets", Err: err}
	}
	return decodeTicketRows(payloads, "vex_tickets"), nil
}

// FetchAllUsers implements UserRepository.
func (s *SQLiteStore) FetchAllUsers(ctx context.Context) ([]*domain.RawUser, error) {
	payloads, err := s.payloads(ctx, `SELECT payload FROM vex_users ORDER BY position`)
	if err != nil {
		return nil, &ServiceError{Op: "fetch users", Err: err}
	}
	return decodeUserRows(payloads), nil
}

// Import replaces both collections in one transaction.
func (s *SQLiteStore) Import(ctx context.Context, fixture Fixture) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{`DELETE FROM vex_tickets`, `DELETE FROM vex_users`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
	}
	for i, doc := range fixture.Tickets {
		payload, cerr := compactDocument(doc)
		if cerr != nil {
			return fmt.Errorf("ticket %d: %w", i, cerr)
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO vex_tickets (ticket_id, payload) VALUES (?, ?)`, documentID(doc), payload); err != nil {
			return fmt.Errorf("insert ticket %d: %w", i, err)
		}
	}
	for i, doc := range fixture.Users {
		payload, cerr := compactDocument(doc)
		if cerr != nil {
			return fmt.Errorf("user %d: %w", i, cerr)
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO vex_users (user_id, payload) VALUES (?, ?)`, documentID(doc), payload); err != nil {
			return fmt.Errorf("insert user %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func (s *SQLiteStore) payloads(ctx context.Context, query string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result [][]byte
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		result = append(result, []byte(payload))
	}
	return result, rows.Err()
}
