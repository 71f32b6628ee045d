package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/vex-labs/ticket-view/pkg/util/errorutil"
)

const fixtureJSON = `{
	"tickets": [
		{"id": 1, "title": "Login fails", "status": {"Open": null}, "priority": 1, "created_by": 3,
		 "created_at": 1700000000000000000, "messages": [{"id": 1, "user_id": 3, "content": "seen", "created_at": 1700000000000000000}]},
		{"id": "18446744073709551615", "title": "Overflow"},
		"garbage",
		{"id": 2, "title": "Export", "status": {"Resolved": null}, "priority": 4},
		{"id": 3, "title": "Crash on login", "status": {"InProgress": null}, "priority": 2}
	],
	"users": [{"id": 3, "name": "Ana", "email": "a@x.com"}]
}`

// newEnv isolates a run from the caller's home config and points the sqlite
// source at a temp database.
func newEnv(t *testing.T) (configPath, fixturePath string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VEX_SOURCE", "sqlite")
	t.Setenv("VEX_SQLITE_PATH", filepath.Join(dir, "vex.db"))
	t.Setenv("VEX_REDIS_ADDR", "")
	fixturePath = filepath.Join(dir, "fixture.json")
	if err := os.WriteFile(fixturePath, []byte(fixtureJSON), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return filepath.Join(dir, "missing.yaml"), fixturePath
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func importFixture(t *testing.T) string {
	t.Helper()
	cfgPath, fixturePath := newEnv(t)
	_, stderr, err := runCLI(t, "--config", cfgPath, "import", fixturePath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(stderr, "Imported 5 tickets and 1 users into sqlite") {
		t.Fatalf("unexpected import report %q", stderr)
	}
	return cfgPath
}

func TestTicketsCommand(t *testing.T) {
	cfgPath := importFixture(t)

	stdout, stderr, err := runCLI(t, "--config", cfgPath, "-o", "json", "tickets", "--sort", "priority", "--desc")
	if err != nil {
		t.Fatalf("tickets: %v", err)
	}
	var list ticketList
	if err := json.Unmarshal([]byte(stdout), &list); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	var ids []int64
	for _, ticket := range list.Data {
		ids = append(ids, ticket.ID)
	}
	if len(ids) != 3 || ids[0] != 2 || ids[1] != 3 || ids[2] != 1 {
		t.Fatalf("unexpected order %v", ids)
	}
	if list.Meta.Malformed != 1 || !strings.Contains(stderr, "skipped malformed ticket") {
		t.Fatalf("malformed record not reported: meta=%+v stderr=%q", list.Meta, stderr)
	}

	stdout, _, err = runCLI(t, "--config", cfgPath, "-o", "table", "tickets", "--tab", "on-going")
	if err != nil {
		t.Fatalf("tickets table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "Crash on login") {
		t.Fatalf("unexpected table:\n%s", stdout)
	}
}

func TestTicketsCommandRejectsBadFlags(t *testing.T) {
	cfgPath, _ := newEnv(t)
	for _, args := range [][]string{
		{"tickets", "--tab", "archived"},
		{"tickets", "--tier", "urgent"},
		{"tickets", "--sort", "title"},
		{"tickets", "--page", "0"},
		{"-o", "xml", "tickets"},
		{"ticket", "abc"},
	} {
		if _, _, err := runCLI(t, append([]string{"--config", cfgPath}, args...)...); err == nil {
			t.Fatalf("%v: expected an error", args)
		}
	}
}

func TestTicketCommand(t *testing.T) {
	cfgPath := importFixture(t)

	stdout, _, err := runCLI(t, "--config", cfgPath, "-o", "yaml", "ticket", "1")
	if err != nil {
		t.Fatalf("ticket: %v", err)
	}
	for _, want := range []string{"title: Login fails", "author: Ana", "created_at: 11/14/2023, 10:13:20 PM"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("yaml output missing %q:\n%s", want, stdout)
		}
	}

	_, _, err = runCLI(t, "--config", cfgPath, "ticket", "42")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUsersAndStatsCommands(t *testing.T) {
	cfgPath := importFixture(t)

	stdout, _, err := runCLI(t, "--config", cfgPath, "-o", "table", "users")
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if !strings.Contains(stdout, "Ana") || !strings.Contains(stdout, "a@x.com") {
		t.Fatalf("unexpected users table:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, "--config", cfgPath, "-o", "json", "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats statsResult
	if err := json.Unmarshal([]byte(stdout), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Data.Total != 3 || stats.Data.Open != 1 {
		t.Fatalf("unexpected stats %+v", stats.Data)
	}
}

func TestCommandsNeedRemoteSource(t *testing.T) {
	cfgPath := importFixture(t)

	_, _, err := runCLI(t, "--config", cfgPath, "status", "1", "resolved")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_IMPLEMENTED" {
		t.Fatalf("expected not implemented, got %v", err)
	}
	if _, _, err := runCLI(t, "--config", cfgPath, "message", "1", "hello"); err == nil {
		t.Fatal("message without --user should fail")
	}
}

func TestUserCommand(t *testing.T) {
	cfgPath := importFixture(t)

	stdout, _, err := runCLI(t, "--config", cfgPath, "-o", "json", "user", "3")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	var detail userDetail
	if err := json.Unmarshal([]byte(stdout), &detail); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if detail.Data.Name != "Ana" || detail.Data.Email != "a@x.com" {
		t.Fatalf("unexpected user %+v", detail.Data)
	}

	_, _, err = runCLI(t, "--config", cfgPath, "user", "9")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestManageCommandsNeedRemoteSource(t *testing.T) {
	cfgPath := importFixture(t)
	for _, args := range [][]string{
		{"create", "--title", "Printer on fire", "--user", "3"},
		{"update", "1", "--title", "Renamed"},
		{"delete", "1"},
		{"user", "create", "Ana", "a@x.com"},
		{"user", "update", "3", "--name", "Ana B"},
		{"user", "delete", "3"},
	} {
		_, _, err := runCLI(t, append([]string{"--config", cfgPath}, args...)...)
		var domainErr *apperrors.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != "NOT_IMPLEMENTED" {
			t.Fatalf("%v: expected not implemented, got %v", args, err)
		}
	}
	if _, _, err := runCLI(t, "--config", cfgPath, "create", "--user", "3"); err == nil {
		t.Fatal("create without --title should fail")
	}
}

type gatewayCall struct {
	method string
	path   string
	body   map[string]any
}

// remoteEnv points the CLI at a fake gateway and records what it receives.
func remoteEnv(t *testing.T, routes map[string]string) (string, func() []gatewayCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []gatewayCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := gatewayCall{method: r.Method, path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &call.body)
		}
		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("VEX_SOURCE", "remote")
	t.Setenv("VEX_BACKEND_URL", srv.URL)
	t.Setenv("VEX_REDIS_ADDR", "")
	return filepath.Join(t.TempDir(), "missing.yaml"), func() []gatewayCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]gatewayCall(nil), calls...)
	}
}

func TestManageCommandsAgainstRemote(t *testing.T) {
	cfgPath, calls := remoteEnv(t, map[string]string{
		"GET /users":         `[{"id": 3, "name": "Ana", "email": "a@x.com"}]`,
		"POST /tickets":      `{"id": 12, "title": "Printer on fire", "ticket_type": {"support": null}, "priority": 2, "created_by": 3}`,
		"PUT /tickets/12":    `{}`,
		"DELETE /tickets/12": `{}`,
		"POST /users":        `{"id": 8, "name": "Default User", "email": "default@example.com"}`,
		"DELETE /users/8":    ``,
	})

	stdout, _, err := runCLI(t, "--config", cfgPath, "-o", "json", "create",
		"--title", "Printer on fire", "--type", "support", "--user", "3", "--priority", "2")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var detail ticketDetail
	if err := json.Unmarshal([]byte(stdout), &detail); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if detail.Data.ID != 12 || detail.Data.CreatedBy.Name != "Ana" || detail.Data.Type != "Support" {
		t.Fatalf("unexpected created ticket %+v", detail.Data)
	}

	if _, _, err := runCLI(t, "--config", cfgPath, "-o", "json", "update", "12", "--priority", "4"); err != nil {
		t.Fatalf("update: %v", err)
	}
	stdout, _, err = runCLI(t, "--config", cfgPath, "-o", "table", "delete", "12")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(stdout, "ticket 12") || !strings.Contains(stdout, "accepted") {
		t.Fatalf("unexpected delete output:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, "--config", cfgPath, "-o", "json", "user", "create", "Default User", "default@example.com")
	if err != nil {
		t.Fatalf("user create: %v", err)
	}
	var user userDetail
	if err := json.Unmarshal([]byte(stdout), &user); err != nil || user.Data.ID != 8 {
		t.Fatalf("unexpected user output %q: %v", stdout, err)
	}
	stdout, _, err = runCLI(t, "--config", cfgPath, "-o", "json", "user", "delete", "8")
	if err != nil {
		t.Fatalf("user delete: %v", err)
	}
	var ack commandResult
	if err := json.Unmarshal([]byte(stdout), &ack); err != nil || ack.Data.UserID != 8 {
		t.Fatalf("unexpected delete output %q: %v", stdout, err)
	}

	var update *gatewayCall
	for _, call := range calls() {
		if call.method == http.MethodPut {
			c := call
			update = &c
		}
	}
	if update == nil || update.path != "/tickets/12" || len(update.body) != 1 || update.body["priority"] != "4" {
		t.Fatalf("update should only send the priority, got %+v", update)
	}

	if _, _, err := runCLI(t, "--config", cfgPath, "update", "12"); err == nil {
		t.Fatal("update without flags should fail")
	}
}

func TestImportRejectsRemoteTarget(t *testing.T) {
	cfgPath, fixturePath := newEnv(t)
	if _, _, err := runCLI(t, "--config", cfgPath, "import", fixturePath, "--target", "remote"); err == nil {
		t.Fatal("expected error for remote target")
	}
}
