package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeTickets parses a JSON array of tickets. Null entries become nil and
// entries that are not objects become records carrying DecodeError, so one bad
// element never hides the rest. Only a payload that is not an array fails.
func DecodeTickets(data []byte) ([]*RawTicket, error) {
	items, err := decodeArray(data)
	if err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	tickets := make([]*RawTicket, 0, len(items))
	for i, item := range items {
		tickets = append(tickets, decodeTicketAt(item, fmt.Sprintf("ticket at index %d", i)))
	}
	return tickets, nil
}

// DecodeTicket parses one stored ticket document with the same rules as
// DecodeTickets. The label prefixes any decode diagnostic.
func DecodeTicket(data []byte, label string) *RawTicket {
	return decodeTicketAt(data, label)
}

func decodeTicketAt(item []byte, label string) *RawTicket {
	if bytes.Equal(bytes.TrimSpace(item), jsonNull) {
		return nil
	}
	var ticket RawTicket
	if err := json.Unmarshal(item, &ticket); err != nil {
		return &RawTicket{DecodeError: fmt.Sprintf("%s: %v", label, err)}
	}
	return &ticket
}

// DecodeUsers parses a JSON array of users. Entries that are not objects are
// dropped: a user without an id cannot be referenced.
func DecodeUsers(data []byte) ([]*RawUser, error) {
	items, err := decodeArray(data)
	if err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]*RawUser, 0, len(items))
	for _, item := range items {
		if user := DecodeUser(item); user != nil {
			users = append(users, user)
		}
	}
	return users, nil
}

// DecodeUser parses one user document, or returns nil when it is not an
// object.
func DecodeUser(data []byte) *RawUser {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}
	var user RawUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil
	}
	return &user
}

func decodeArray(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("expected a JSON array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	return items, nil
}
