package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/vex-labs/ticket-view/internal/domain"
)

type recordedRequest struct {
	method string
	path   string
	body   map[string]json.RawMessage
}

type requestLog struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.requests...)
}

func newGateway(t *testing.T, routes map[string]string) (*httptest.Server, *requestLog) {
	t.Helper()
	seen := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		seen.mu.Lock()
		seen.requests = append(seen.requests, rec)
		seen.mu.Unlock()

		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no route"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestRemoteFetchAllTickets(t *testing.T) {
	srv, _ := newGateway(t, map[string]string{
		"GET /tickets": `[{"id": 18446744073709551615, "title": "Huge"}, {"id": "2", "status": {"Resolved": null}}, 5]`,
	})
	repo := NewRemoteRepository(srv.URL, time.Second, nil)

	tickets, err := repo.FetchAllTickets(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(tickets))
	}
	if tickets[0].ID.Text() != "18446744073709551615" {
		t.Fatalf("large id lost precision: %q", tickets[0].ID.Text())
	}
	if key, _ := tickets[1].Status.Key(); key != "Resolved" {
		t.Fatalf("unexpected status %q", key)
	}
	if tickets[2].DecodeError == "" {
		t.Fatal("expected a decode error for the scalar entry")
	}
}

func TestRemoteFetchAllUsers(t *testing.T) {
	srv, _ := newGateway(t, map[string]string{
		"GET /users": `[{"id": 3, "name": "Ana"}, "junk"]`,
	})
	repo := NewRemoteRepository(srv.URL, time.Second, nil)

	users, err := repo.FetchAllUsers(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(users) != 1 || users[0].Name.String() != "Ana" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestRemoteFetchFailures(t *testing.T) {
	srv, _ := newGateway(t, map[string]string{
		"GET /users": `{"Err": "canister trapped"}`,
	})
	repo := NewRemoteRepository(srv.URL, time.Second, nil)

	_, err := repo.FetchAllTickets(context.Background())
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected a 404 service error, got %v", err)
	}

	_, err = repo.FetchAllUsers(context.Background())
	if !errors.As(err, &svcErr) || svcErr.Op != "fetch users" {
		t.Fatalf("expected a decode service error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.FetchAllUsers(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestRemoteCommands(t *testing.T) {
	srv, seen := newGateway(t, map[string]string{
		"POST /tickets/7/status":   `{}`,
		"POST /tickets/7/messages": `{}`,
		"POST /tickets/7/assign":   `{}`,
	})
	repo := NewRemoteRepository(srv.URL, time.Second, nil)
	ctx := context.Background()

	if err := repo.UpdateStatus(ctx, 7, variantOf(t, `{"InProgress": null}`)); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := repo.AddMessage(ctx, 7, 3, "on it"); err != nil {
		t.Fatalf("add message: %v", err)
	}
	assignee := int64(5)
	if err := repo.Assign(ctx, 7, &assignee); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := repo.Assign(ctx, 7, nil); err != nil {
		t.Fatalf("unassign: %v", err)
	}

	requests := seen.all()
	if len(requests) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(requests))
	}
	want := []struct {
		path, field, value string
	}{
		{"/tickets/7/status", "status", `{"InProgress":null}`},
		{"/tickets/7/messages", "user_id", `"3"`},
		{"/tickets/7/assign", "assignee_id", `"5"`},
		{"/tickets/7/assign", "assignee_id", `null`},
	}
	for i, w := range want {
		if requests[i].method != http.MethodPost || requests[i].path != w.path {
			t.Fatalf("request %d: got %s %s", i, requests[i].method, requests[i].path)
		}
		if got := string(requests[i].body[w.field]); got != w.value {
			t.Fatalf("request %d: %s = %s, want %s", i, w.field, got, w.value)
		}
	}
	if got := string(requests[1].body["content"]); got != `"on it"` {
		t.Fatalf("unexpected content %s", got)
	}

	if err := repo.UpdateStatus(ctx, 99, variantOf(t, `"Closed"`)); err == nil {
		t.Fatal("expected an error for an unknown ticket route")
	}
}

func TestRemoteTicketLifecycleCommands(t *testing.T) {
	srv, seen := newGateway(t, map[string]string{
		"POST /tickets":      `{"id": "12", "title": "Printer on fire", "ticket_type": {"bug": null}, "created_by": 3}`,
		"PUT /tickets/12":    ``,
		"DELETE /tickets/12": ``,
	})
	repo := NewRemoteRepository(srv.URL, time.Second, nil)
	ctx := context.Background()

	created, err := repo.CreateTicket(ctx, domain.NewTicket{
		Title:       "Printer on fire",
		Description: "third floor",
		TicketType:  domain.VariantOf("bug"),
		CreatedBy:   3,
		Priority:    1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created == nil || created.ID.Text() != "12" {
		t.Fatalf("unexpected created ticket %+v", created)
	}

	title := "Printer fixed"
	priority := int64(4)
	if err := repo.UpdateTicket(ctx, 12, domain.TicketChanges{Title: &title, Priority: &priority}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.DeleteTicket(ctx, 12); err != nil {
		t.Fatalf("delete: %v", err)
	}

	requests := seen.all()
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}
	create := requests[0]
	if create.method != http.MethodPost || create.path != "/tickets" {
		t.Fatalf("unexpected create request %s %s", create.method, create.path)
	}
	wantCreate := map[string]string{
		"title":       `"Printer on fire"`,
		"description": `"third floor"`,
		"ticket_type": `{"bug":null}`,
		"created_by":  `"3"`,
		"priority":    `"1"`,
	}
	for field, want := range wantCreate {
		if got := string(create.body[field]); got != want {
			t.Fatalf("create %s = %s, want %s", field, got, want)
		}
	}

	update := requests[1]
	if update.method != http.MethodPut || update.path != "/tickets/12" {
		t.Fatalf("unexpected update request %s %s", update.method, update.path)
	}
	if len(update.body) != 2 || string(update.body["title"]) != `"Printer fixed"` || string(update.body["priority"]) != `"4"` {
		t.Fatalf("update should only carry the changed fields, got %v", update.body)
	}
	if requests[2].method != http.MethodDelete || requests[2].path != "/tickets/12" || requests[2].body != nil {
		t.Fatalf("unexpected delete request %+v", requests[2])
	}

	if err := repo.DeleteTicket(ctx, 99); err == nil {
		t.Fatal("expected an error for an unknown ticket")
	}
}

func TestRemoteUserCommands(t *testing.T) {
	srv, seen := newGateway(t, map[string]string{
		"POST /users":     `{"id": 8, "name": "Default User", "email": "default@example.com"}`,
		"PUT /users/8":    `{"id": 8, "name": "Ana", "email": "default@example.com"}`,
		"DELETE /users/8": ``,
	})
	repo := NewRemoteRepository(srv.URL, time.Second, nil)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "Default User", "default@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created == nil || created.ID.Text() != "8" {
		t.Fatalf("unexpected created user %+v", created)
	}

	name := "Ana"
	updated, err := repo.UpdateUser(ctx, 8, domain.UserChanges{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated == nil || updated.Name.String() != "Ana" {
		t.Fatalf("unexpected updated user %+v", updated)
	}
	if err := repo.DeleteUser(ctx, 8); err != nil {
		t.Fatalf("delete: %v", err)
	}

	requests := seen.all()
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}
	if string(requests[0].body["email"]) != `"default@example.com"` {
		t.Fatalf("unexpected create body %v", requests[0].body)
	}
	if requests[1].method != http.MethodPut || requests[1].path != "/users/8" || len(requests[1].body) != 1 {
		t.Fatalf("unexpected update request %+v", requests[1])
	}
	if requests[2].method != http.MethodDelete || requests[2].path != "/users/8" {
		t.Fatalf("unexpected delete request %+v", requests[2])
	}

	if _, err := repo.UpdateUser(ctx, 99, domain.UserChanges{Name: &name}); err == nil {
		t.Fatal("expected an error for an unknown user")
	}
}
