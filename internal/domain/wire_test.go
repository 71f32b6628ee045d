package domain

import (
	"encoding/json"
	"testing"
)

func TestWireIntUnmarshal(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPresent bool
		wantText    string
	}{
		{name: "number", input: `7`, wantPresent: true, wantText: "7"},
		{name: "beyond float precision", input: `123456789012345678901234567890`, wantPresent: true, wantText: "123456789012345678901234567890"},
		{name: "numeric string", input: `" 12 "`, wantPresent: true, wantText: "12"},
		{name: "null", input: `null`},
		{name: "empty optional", input: `[]`},
		{name: "optional with value", input: `[42]`, wantPresent: true, wantText: "42"},
		{name: "optional with null", input: `[null]`},
		{name: "bool kept as invalid", input: `true`, wantPresent: true, wantText: "true"},
		{name: "object kept as invalid", input: `{"a":1}`, wantPresent: true, wantText: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w WireInt
			if err := json.Unmarshal([]byte(tt.input), &w); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.input, err)
			}
			if w.Present() != tt.wantPresent {
				t.Fatalf("Present() = %v, want %v", w.Present(), tt.wantPresent)
			}
			if w.Text() != tt.wantText {
				t.Fatalf("Text() = %q, want %q", w.Text(), tt.wantText)
			}
		})
	}
}

func TestWireIntMarshalKeepsPrecision(t *testing.T) {
	w := WireIntFromString("123456789012345678901234567890")
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"123456789012345678901234567890"` {
		t.Fatalf("unexpected encoding %s", data)
	}

	var back WireInt
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != w {
		t.Fatalf("round trip changed value: %+v != %+v", back, w)
	}

	absent, _ := json.Marshal(AbsentWireInt())
	if string(absent) != "null" {
		t.Fatalf("absent encodes as %s", absent)
	}
}

func TestVariantUnmarshal(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantKey       string
		wantOK        bool
		wantMalformed bool
	}{
		{name: "single key", input: `{"InProgress":null}`, wantKey: "InProgress", wantOK: true},
		{name: "first key wins", input: `{"Resolved":null,"Open":null}`, wantKey: "Resolved", wantOK: true},
		{name: "empty object", input: `{}`},
		{name: "plain string", input: `"Closed"`, wantKey: "Closed", wantOK: true},
		{name: "null", input: `null`},
		{name: "optional variant", input: `[{"OnHold":null}]`, wantKey: "OnHold", wantOK: true},
		{name: "number", input: `3`, wantMalformed: true},
		{name: "long array", input: `[1,2]`, wantMalformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Variant
			if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.input, err)
			}
			key, ok := v.Key()
			if key != tt.wantKey || ok != tt.wantOK {
				t.Fatalf("Key() = (%q, %v), want (%q, %v)", key, ok, tt.wantKey, tt.wantOK)
			}
			if v.Malformed() != tt.wantMalformed {
				t.Fatalf("Malformed() = %v, want %v", v.Malformed(), tt.wantMalformed)
			}
		})
	}
}

func TestVariantMarshal(t *testing.T) {
	data, err := json.Marshal(VariantOf("InProgress"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"InProgress":null}` {
		t.Fatalf("unexpected encoding %s", data)
	}
}

func TestMessageListKeepsLengthOfMalformedEntries(t *testing.T) {
	var ticket RawTicket
	payload := `{"messages":[{"id":1,"content":"hi"}, 5, null]}`
	if err := json.Unmarshal([]byte(payload), &ticket); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ticket.Messages.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", ticket.Messages.Len())
	}
	if ticket.Messages.Items[0] == nil || ticket.Messages.Items[0].Content.String() != "hi" {
		t.Fatalf("first entry not decoded: %+v", ticket.Messages.Items[0])
	}
	if ticket.Messages.Items[1] != nil || ticket.Messages.Items[2] != nil {
		t.Fatal("expected malformed entries to decode to nil")
	}

	var notList RawTicket
	if err := json.Unmarshal([]byte(`{"messages":"none"}`), &notList); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if notList.Messages.Sequence || notList.Messages.Len() != 0 {
		t.Fatalf("expected no sequence, got %+v", notList.Messages)
	}
}

func TestDecodeTicketsIsolatesBadEntries(t *testing.T) {
	tickets, err := DecodeTickets([]byte(`[{"id":1,"title":42}, null, 7]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(tickets))
	}
	if tickets[0] == nil || tickets[0].ID.Text() != "1" {
		t.Fatalf("first ticket not decoded: %+v", tickets[0])
	}
	if _, ok := tickets[0].Title.Value(); ok {
		t.Fatal("numeric title should decode as absent")
	}
	if tickets[1] != nil {
		t.Fatal("null entry should decode to nil")
	}
	if tickets[2] == nil || tickets[2].DecodeError == "" {
		t.Fatalf("expected decode error record, got %+v", tickets[2])
	}

	if _, err := DecodeTickets([]byte(`{"Ok":[]}`)); err == nil {
		t.Fatal("expected error for non-array payload")
	}
}

func TestDecodeUsersDropsNonObjects(t *testing.T) {
	users, err := DecodeUsers([]byte(`[{"id":3,"name":"Ana"}, "bob", null]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 || users[0].Name.String() != "Ana" {
		t.Fatalf("unexpected users %+v", users)
	}
}
