package domain

import (
	"bytes"
	"encoding/json"
)

// RawMessage is one entry of a ticket thread.
type RawMessage struct {
	ID        WireInt  `json:"id"`
	UserID    WireInt  `json:"user_id"`
	Content   WireText `json:"content"`
	CreatedAt WireInt  `json:"created_at"`
}

// MessageList is the thread of a ticket. Sequence is false when the field was
// missing or was not an array.
type MessageList struct {
	Items    []*RawMessage
	Sequence bool
}

// MessagesOf builds a proper message sequence.
func MessagesOf(items ...*RawMessage) MessageList {
	if items == nil {
		items = []*RawMessage{}
	}
	return MessageList{Items: items, Sequence: true}
}

// Len is the number of entries, or zero when no sequence was received.
func (l MessageList) Len() int {
	if !l.Sequence {
		return 0
	}
	return len(l.Items)
}

// UnmarshalJSON keeps the array length even when individual entries are not
// objects; those entries decode to nil.
func (l *MessageList) UnmarshalJSON(data []byte) error {
	*l = MessageList{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil
	}
	l.Sequence = true
	l.Items = make([]*RawMessage, 0, len(items))
	for _, item := range items {
		var msg RawMessage
		if err := json.Unmarshal(item, &msg); err != nil || bytes.Equal(bytes.TrimSpace(item), jsonNull) {
			l.Items = append(l.Items, nil)
			continue
		}
		l.Items = append(l.Items, &msg)
	}
	return nil
}

// MarshalJSON writes the array, or null when no sequence was received.
func (l MessageList) MarshalJSON() ([]byte, error) {
	if !l.Sequence {
		return jsonNull, nil
	}
	items := l.Items
	if items == nil {
		items = []*RawMessage{}
	}
	return json.Marshal(items)
}
