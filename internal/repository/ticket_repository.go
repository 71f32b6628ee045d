package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vex-labs/ticket-view/internal/domain"
)

// PostgresMirror serves tickets and users from the vex_tickets and vex_users
// mirror tables. Rows are returned in the order they were mirrored.
type PostgresMirror struct {
	pool *pgxpool.Pool
}

// NewPostgresMirror instantiates the repository.
func NewPostgresMirror(pool *pgxpool.Pool) *PostgresMirror {
	return &PostgresMirror{pool: pool}
}

// FetchAllTickets implements TicketRepository.
func (r *PostgresMirror) FetchAllTickets(ctx context.Context) ([]*domain.RawTicket, error) {
	const query = `SELECT payload::text FROM vex_tickets ORDER BY position`
	payloads, err := r.payloads(ctx, query)
	if err != nil {
		return nil, &ServiceError{Op: "fetch tickets", Err: err}
	}
	return decodeTicketRows(payloads, "vex_tickets"), nil
}

// Import replaces the mirrored collections in one transaction.
func (r *PostgresMirror) Import(ctx context.Context, fixture Fixture) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM vex_tickets`); err != nil {
			return fmt.Errorf("clear tickets: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM vex_users`); err != nil {
			return fmt.Errorf("clear users: %w", err)
		}

		batch := &pgx.Batch{}
		for i, doc := range fixture.Tickets {
			payload, err := compactDocument(doc)
			if err != nil {
				return fmt.Errorf("ticket %d: %w", i, err)
			}
			batch.Queue(`INSERT INTO vex_tickets (ticket_id, payload) VALUES ($1::text::numeric, $2::json)`, documentID(doc), payload)
		}
		for i, doc := range fixture.Users {
			payload, err := compactDocument(doc)
			if err != nil {
				return fmt.Errorf("user %d: %w", i, err)
			}
			batch.Queue(`INSERT INTO vex_users (user_id, payload) VALUES ($1::text::numeric, $2::json)`, documentID(doc), payload)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *PostgresMirror) payloads(ctx context.Context, query string) ([][]byte, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres not configured")
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayloads(rows)
}

func scanPayloads(rows pgx.Rows) ([][]byte, error) {
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
