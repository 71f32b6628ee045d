package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// WireInt is an integer exactly as the VEX backend sent it. The backend
// speaks nat/u64, so values may exceed float64 precision; the decimal text is
// carried verbatim until the view model coerces it.
type WireInt struct {
	text    string
	present bool
}

// WireIntFromInt64 wraps an already-coerced integer.
func WireIntFromInt64(v int64) WireInt {
	return WireInt{text: strconv.FormatInt(v, 10), present: true}
}

// WireIntFromString wraps decimal text. The text is not validated here.
func WireIntFromString(s string) WireInt {
	return WireInt{text: strings.TrimSpace(s), present: true}
}

// AbsentWireInt is the value of a missing or null field.
func AbsentWireInt() WireInt {
	return WireInt{}
}

// Present reports whether the field carried a non-null value.
func (w WireInt) Present() bool {
	return w.present
}

// Text returns the raw decimal text.
func (w WireInt) Text() string {
	return w.text
}

// UnmarshalJSON accepts numbers of any size, numeric strings, null and
// candid-style optionals ([] or [x]). Other shapes are kept as present but
// unparseable; decoding never fails.
func (w *WireInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull):
		*w = WireInt{}
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			*w = WireInt{text: string(trimmed), present: true}
			return nil
		}
		*w = WireIntFromString(s)
	case trimmed[0] == '[':
		inner, ok := unwrapOptional(trimmed)
		if !ok {
			*w = WireInt{text: string(trimmed), present: true}
			return nil
		}
		if inner == nil {
			*w = WireInt{}
			return nil
		}
		return w.UnmarshalJSON(inner)
	default:
		*w = WireInt{text: string(trimmed), present: true}
	}
	return nil
}

// MarshalJSON writes the decimal text as a JSON string so large values
// survive a round trip through caches.
func (w WireInt) MarshalJSON() ([]byte, error) {
	if !w.present {
		return jsonNull, nil
	}
	return json.Marshal(w.text)
}

// WireText is an optional text field.
type WireText struct {
	value   string
	present bool
}

// TextFrom wraps a present value.
func TextFrom(s string) WireText {
	return WireText{value: s, present: true}
}

// AbsentText is the value of a missing, null or non-string field.
func AbsentText() WireText {
	return WireText{}
}

// Value returns the text and whether it was present.
func (t WireText) Value() (string, bool) {
	return t.value, t.present
}

// String returns the text or an empty string.
func (t WireText) String() string {
	return t.value
}

// UnmarshalJSON keeps strings and candid optionals of strings; anything else
// is treated as absent.
func (t *WireText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*t = WireText{}
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			*t = TextFrom(s)
		}
	case '[':
		if inner, ok := unwrapOptional(trimmed); ok && inner != nil {
			return t.UnmarshalJSON(inner)
		}
	}
	return nil
}

// MarshalJSON writes the text or null.
func (t WireText) MarshalJSON() ([]byte, error) {
	if !t.present {
		return jsonNull, nil
	}
	return json.Marshal(t.value)
}

// unwrapOptional decodes a candid opt encoding: [] is absent (nil, true),
// [x] yields x. Longer arrays are not optionals.
func unwrapOptional(data []byte) (json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	switch len(items) {
	case 0:
		return nil, true
	case 1:
		return items[0], true
	default:
		return nil, false
	}
}
