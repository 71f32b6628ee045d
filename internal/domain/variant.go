package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Variant is the backend's single-key enum encoding, e.g. {"InProgress": null}.
// Only the variant name is retained; payloads are ignored.
type Variant struct {
	key       string
	present   bool
	malformed bool
}

// VariantOf builds a variant with the given name.
func VariantOf(key string) Variant {
	return Variant{key: key, present: true}
}

// Key returns the variant name, or false when the value was absent, empty or
// malformed.
func (v Variant) Key() (string, bool) {
	if !v.present || v.malformed || strings.TrimSpace(v.key) == "" {
		return "", false
	}
	return v.key, true
}

// Present reports whether any non-null value was received.
func (v Variant) Present() bool {
	return v.present
}

// Malformed reports whether the value had a shape no variant can take.
func (v Variant) Malformed() bool {
	return v.malformed
}

// UnmarshalJSON accepts null, a plain string, an object (the first key in
// document order wins) or a candid optional of one of those. Decoding never
// fails.
func (v *Variant) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*v = Variant{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			*v = Variant{present: true, malformed: true}
			return nil
		}
		*v = VariantOf(s)
	case '{':
		key, ok := firstObjectKey(trimmed)
		if !ok {
			*v = Variant{present: true, malformed: true}
			return nil
		}
		*v = Variant{key: key, present: true}
	case '[':
		inner, ok := unwrapOptional(trimmed)
		if !ok {
			*v = Variant{present: true, malformed: true}
			return nil
		}
		if inner == nil {
			return nil
		}
		return v.UnmarshalJSON(inner)
	default:
		*v = Variant{present: true, malformed: true}
	}
	return nil
}

// MarshalJSON writes {"Key": null}, or null when there is no key.
func (v Variant) MarshalJSON() ([]byte, error) {
	key, ok := v.Key()
	if !ok {
		return jsonNull, nil
	}
	return json.Marshal(map[string]any{key: nil})
}

func firstObjectKey(data []byte) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return "", false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", false
	}
	if !dec.More() {
		return "", true
	}
	tok, err = dec.Token()
	if err != nil {
		return "", false
	}
	key, ok := tok.(string)
	return key, ok
}
