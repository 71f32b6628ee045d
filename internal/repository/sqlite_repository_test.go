package repository

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vex-labs/ticket-view/internal/persistence"
)

func testSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := persistence.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "vex.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(db.Close)
	return NewSQLiteStore(db.DB)
}

func TestSQLiteImportAndFetch(t *testing.T) {
	store := testSQLiteStore(t)
	ctx := context.Background()

	fixture, err := ReadFixture(strings.NewReader(`{
		"tickets": [
			{"id": 2, "title": "Second", "status": {"OnHold": null, "Open": null}},
			{"id": "99999999999999999999", "title": "Huge"},
			"broken",
			null
		],
		"users": [{"id": 3, "name": "Ana"}, 4]
	}`))
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if err := store.Import(ctx, fixture); err != nil {
		t.Fatalf("import: %v", err)
	}

	tickets, err := store.FetchAllTickets(ctx)
	if err != nil {
		t.Fatalf("fetch tickets: %v", err)
	}
	if len(tickets) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(tickets))
	}
	if key, _ := tickets[0].Status.Key(); key != "OnHold" {
		t.Fatalf("document order not preserved, first key %q", key)
	}
	if tickets[1].ID.Text() != "99999999999999999999" {
		t.Fatalf("unexpected id %q", tickets[1].ID.Text())
	}
	if tickets[2] == nil || tickets[2].DecodeError == "" {
		t.Fatalf("expected a decode error record, got %+v", tickets[2])
	}
	if tickets[3] != nil {
		t.Fatalf("expected nil for a null document, got %+v", tickets[3])
	}

	users, err := store.FetchAllUsers(ctx)
	if err != nil {
		t.Fatalf("fetch users: %v", err)
	}
	if len(users) != 1 || users[0].Name.String() != "Ana" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestSQLiteImportReplacesSnapshot(t *testing.T) {
	store := testSQLiteStore(t)
	ctx := context.Background()

	first, _ := ReadFixture(strings.NewReader(`{"tickets": [{"id": 1}, {"id": 2}]}`))
	second, _ := ReadFixture(strings.NewReader(`{"tickets": [{"id": 3}]}`))
	if err := store.Import(ctx, first); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := store.Import(ctx, second); err != nil {
		t.Fatalf("import: %v", err)
	}

	tickets, err := store.FetchAllTickets(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID.Text() != "3" {
		t.Fatalf("expected only the second snapshot, got %d tickets", len(tickets))
	}
}
