// Package viewmodel turns untrusted VEX backend records into display-safe
// views. Every function here is total: malformed input degrades to a
// documented default and nothing returns an error.
package viewmodel

import (
	"math/big"
	"strings"
	"time"

	"github.com/vex-labs/ticket-view/internal/domain"
)

var nanosPerMilli = big.NewInt(1_000_000)

// Coerced is a wire integer after conversion. Present is false for absent
// values; Valid is false when a present value is not a base-10 integer that
// fits in an int64.
type Coerced struct {
	Value   int64
	Present bool
	Valid   bool
}

// Coerce converts a wire integer through its decimal text.
func Coerce(w domain.WireInt) Coerced {
	if !w.Present() {
		return Coerced{}
	}
	n, ok := parseDecimal(w.Text())
	if !ok || !n.IsInt64() {
		return Coerced{Present: true}
	}
	return Coerced{Value: n.Int64(), Present: true, Valid: true}
}

// IDOrZero coerces an identifier. Absent, invalid and negative values map to
// the sentinel 0; backend ids start at 1.
func IDOrZero(w domain.WireInt) int64 {
	c := Coerce(w)
	if !c.Valid || c.Value < 0 {
		return 0
	}
	return c.Value
}

// CoerceNanos converts a nanosecond timestamp to a UTC time with millisecond
// precision. Division happens on the arbitrary-precision value, so timestamps
// beyond int64 nanoseconds still convert.
func CoerceNanos(w domain.WireInt) (time.Time, bool) {
	if !w.Present() {
		return time.Time{}, false
	}
	n, ok := parseDecimal(w.Text())
	if !ok {
		return time.Time{}, false
	}
	ms := new(big.Int).Quo(n, nanosPerMilli)
	if !ms.IsInt64() {
		return time.Time{}, false
	}
	return time.UnixMilli(ms.Int64()).UTC(), true
}

func parseDecimal(text string) (*big.Int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	return new(big.Int).SetString(text, 10)
}
