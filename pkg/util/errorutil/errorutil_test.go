package errorutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "domain error passes through", err: NewValidationError("bad tab", nil), code: "VALIDATION_FAILED", status: http.StatusBadRequest},
		{name: "wrapped domain error", err: fmt.Errorf("handler: %w", NewNotFound("ticket", nil)), code: "NOT_FOUND", status: http.StatusNotFound},
		{name: "no rows", err: fmt.Errorf("query: %w", sql.ErrNoRows), code: "NOT_FOUND", status: http.StatusNotFound},
		{name: "deadline", err: context.DeadlineExceeded, code: "TIMEOUT", status: http.StatusGatewayTimeout},
		{name: "upstream", err: NewUpstreamError(errors.New("connection refused")), code: "UPSTREAM_UNAVAILABLE", status: http.StatusBadGateway},
		{name: "not implemented", err: NewNotImplemented("assign"), code: "NOT_IMPLEMENTED", status: http.StatusNotImplemented},
		{name: "anything else", err: errors.New("boom"), code: "INTERNAL_ERROR", status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.code || got.HTTPStatus != tt.status {
				t.Fatalf("got %s/%d, want %s/%d", got.Code, got.HTTPStatus, tt.code, tt.status)
			}
		})
	}
	if ToDomainError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewUpstreamError(cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if err.Error() != "ticket service unavailable: dial tcp: refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
