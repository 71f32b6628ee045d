package repository

import (
	"context"

	"github.com/vex-labs/ticket-view/internal/domain"
)

// FetchAllUsers implements UserRepository.
func (r *PostgresMirror) FetchAllUsers(ctx context.Context) ([]*domain.RawUser, error) {
	const query = `SELECT payload::text FROM vex_users ORDER BY position`
	payloads, err := r.payloads(ctx, query)
	if err != nil {
		return nil, &ServiceError{Op: "fetch users", Err: err}
	}
	return decodeUserRows(payloads), nil
}
