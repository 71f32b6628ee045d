package viewmodel

import (
	"encoding/json"
	"testing"

	"github.com/vex-labs/ticket-view/internal/domain"
)

func decodeTicket(t *testing.T, payload string) *domain.RawTicket {
	t.Helper()
	var ticket domain.RawTicket
	if err := json.Unmarshal([]byte(payload), &ticket); err != nil {
		t.Fatalf("decode ticket %s: %v", payload, err)
	}
	return &ticket
}

func decodeTickets(t *testing.T, payload string) []*domain.RawTicket {
	t.Helper()
	tickets, err := domain.DecodeTickets([]byte(payload))
	if err != nil {
		t.Fatalf("decode tickets: %v", err)
	}
	return tickets
}

func decodeUsers(t *testing.T, payload string) []*domain.RawUser {
	t.Helper()
	users, err := domain.DecodeUsers([]byte(payload))
	if err != nil {
		t.Fatalf("decode users: %v", err)
	}
	return users
}
