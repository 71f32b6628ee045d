package viewmodel

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vex-labs/ticket-view/internal/domain"
)

// DefaultTypeLabel is used when a ticket carries no type.
const DefaultTypeLabel = "Bug"

// statusTable is keyed by folded spelling, so backend keys (InProgress),
// stats keys (in_progress) and UI labels (on-going) all resolve.
var statusTable = map[string]domain.StatusLabel{
	"open":       domain.StatusOpen,
	"new":        domain.StatusOpen,
	"inprogress": domain.StatusOnGoing,
	"ongoing":    domain.StatusOnGoing,
	"onhold":     domain.StatusOnHold,
	"resolved":   domain.StatusResolved,
	"closed":     domain.StatusClosed,
}

var backendStatusKeys = map[domain.StatusLabel]string{
	domain.StatusOpen:     "Open",
	domain.StatusOnGoing:  "InProgress",
	domain.StatusOnHold:   "OnHold",
	domain.StatusResolved: "Resolved",
	domain.StatusClosed:   "Closed",
}

// NormalizeStatus maps a status variant to its UI label. Absent, empty,
// malformed and unknown variants all yield open.
func NormalizeStatus(v domain.Variant) domain.StatusLabel {
	key, ok := v.Key()
	if !ok {
		return domain.StatusOpen
	}
	return NormalizeStatusLabel(key)
}

// NormalizeStatusLabel maps a plain string to a UI label. It is idempotent.
func NormalizeStatusLabel(s string) domain.StatusLabel {
	if label, ok := statusTable[foldKey(s)]; ok {
		return label
	}
	return domain.StatusOpen
}

// ParseStatusLabel is the strict form of NormalizeStatusLabel: unknown
// spellings are reported instead of defaulting to open.
func ParseStatusLabel(s string) (domain.StatusLabel, bool) {
	label, ok := statusTable[foldKey(s)]
	return label, ok
}

// IsStatusLabel reports whether s spells one of the UI labels exactly.
func IsStatusLabel(s string) bool {
	_, ok := backendStatusKeys[domain.StatusLabel(s)]
	return ok
}

// EncodeStatus converts a UI label back to the backend variant.
func EncodeStatus(label domain.StatusLabel) domain.Variant {
	return domain.VariantOf(backendStatusKeys[NormalizeStatusLabel(string(label))])
}

// NormalizeType maps a type variant to a label. The type vocabulary is open,
// so the key is kept and only its first letter is upper-cased.
func NormalizeType(v domain.Variant) string {
	key, ok := v.Key()
	if !ok {
		return DefaultTypeLabel
	}
	return NormalizeTypeLabel(key)
}

// NormalizeTypeLabel is NormalizeType for plain strings. It is idempotent.
func NormalizeTypeLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTypeLabel
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// TicketTypes are the type labels the backend accepts on writes.
var TicketTypes = []string{"Bug", "Feature", "Support", "Maintenance", "Other"}

// ParseTicketType maps a type label to the backend variant, whose keys are
// lower case. Unknown types are reported.
func ParseTicketType(s string) (domain.Variant, bool) {
	key := foldKey(s)
	for _, label := range TicketTypes {
		if foldKey(label) == key {
			return domain.VariantOf(key), true
		}
	}
	return domain.Variant{}, false
}

// ParseTier reads a tier name; anything but high or normal selects no tier.
func ParseTier(s string) domain.PriorityTier {
	switch domain.PriorityTier(strings.ToLower(strings.TrimSpace(s))) {
	case domain.TierHigh:
		return domain.TierHigh
	case domain.TierNormal:
		return domain.TierNormal
	default:
		return ""
	}
}

func foldKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.TrimSpace(s) {
		switch r {
		case '-', '_', ' ':
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
