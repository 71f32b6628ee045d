package viewmodel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vex-labs/ticket-view/internal/domain"
)

const (
	DefaultTitle       = "Untitled"
	DefaultDescription = "No description"
	UnknownDate        = "Unknown date"
	UnassignedName     = "Unassigned"
	MalformedTitle     = "Error: Malformed Ticket"

	// DefaultDateLayout renders like an en-US locale date-time string.
	DefaultDateLayout = "1/2/2006, 3:04:05 PM"
	// MessageDateLayout is the denser layout used inside ticket threads.
	MessageDateLayout = "Jan 2, 2006 3:04 PM"

	highPriorityCeiling = 2
	unresolvedUserName  = "User #?"
)

// Options controls how timestamps are rendered.
type Options struct {
	Location          *time.Location
	DateLayout        string
	MessageDateLayout string
	// Format replaces layout based rendering of ticket timestamps when set.
	Format func(time.Time) string
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.DateLayout == "" {
		o.DateLayout = DefaultDateLayout
	}
	if o.MessageDateLayout == "" {
		o.MessageDateLayout = MessageDateLayout
	}
	return o
}

func (o Options) formatTicketTime(t time.Time) string {
	if o.Format != nil {
		return o.Format(t)
	}
	return t.In(o.Location).Format(o.DateLayout)
}

// UserIndex resolves coerced user ids to users.
type UserIndex struct {
	byID map[int64]*domain.RawUser
}

// NewUserIndex indexes users by coerced id. Users with unusable ids are
// skipped and the first user seen for an id wins.
func NewUserIndex(users []*domain.RawUser) UserIndex {
	idx := UserIndex{byID: make(map[int64]*domain.RawUser, len(users))}
	for _, user := range users {
		if user == nil {
			continue
		}
		id := IDOrZero(user.ID)
		if id == 0 {
			continue
		}
		if _, exists := idx.byID[id]; exists {
			continue
		}
		idx.byID[id] = user
	}
	return idx
}

// Lookup finds a user by id.
func (idx UserIndex) Lookup(id int64) (*domain.RawUser, bool) {
	user, ok := idx.byID[id]
	return user, ok
}

// Len is the number of indexed users.
func (idx UserIndex) Len() int {
	return len(idx.byID)
}

// Sanitize builds the view of one ticket. It returns nil only for a nil
// ticket. A ticket that cannot be built yields an error record with ID 0 and
// the failure in Diagnostic; such records never pass Filter.
func Sanitize(raw *domain.RawTicket, users UserIndex, opts Options) (view *domain.TicketView) {
	if raw == nil {
		return nil
	}
	opts = opts.withDefaults()
	defer func() {
		if r := recover(); r != nil {
			view = malformedTicket(fmt.Sprint(r))
		}
	}()
	if raw.DecodeError != "" {
		return malformedTicket(raw.DecodeError)
	}
	built := buildTicket(raw, users, opts)
	return &built
}

// SanitizeAll sanitizes a collection in order. Nil tickets are dropped; error
// records are kept so callers can report them.
func SanitizeAll(raws []*domain.RawTicket, users UserIndex, opts Options) []domain.TicketView {
	out := make([]domain.TicketView, 0, len(raws))
	for _, raw := range raws {
		view := Sanitize(raw, users, opts)
		if view == nil {
			continue
		}
		out = append(out, *view)
	}
	return out
}

// SanitizeUser builds the view of one user, or nil for a nil user.
func SanitizeUser(raw *domain.RawUser, opts Options) *domain.UserView {
	if raw == nil {
		return nil
	}
	opts = opts.withDefaults()
	id := IDOrZero(raw.ID)
	view := &domain.UserView{
		ID:               id,
		Name:             textOr(raw.Name, placeholderName(id)),
		Email:            textOr(raw.Email, ""),
		CreatedAtDisplay: UnknownDate,
	}
	if t, ok := CoerceNanos(raw.CreatedAt); ok {
		view.CreatedAtDisplay = opts.formatTicketTime(t)
	}
	return view
}

// SanitizeUsers sanitizes users in order, dropping nil entries.
func SanitizeUsers(raws []*domain.RawUser, opts Options) []domain.UserView {
	out := make([]domain.UserView, 0, len(raws))
	for _, raw := range raws {
		if view := SanitizeUser(raw, opts); view != nil {
			out = append(out, *view)
		}
	}
	return out
}

func buildTicket(raw *domain.RawTicket, users UserIndex, opts Options) domain.TicketView {
	view := defaultTicket()
	view.ID = IDOrZero(raw.ID)
	view.Title = textOr(raw.Title, DefaultTitle)
	view.Description = textOr(raw.Description, DefaultDescription)
	view.StatusLabel = NormalizeStatus(raw.Status)
	view.TypeLabel = NormalizeType(raw.TicketType)

	if priority := Coerce(raw.Priority); priority.Valid {
		view.Priority = priority.Value
		if priority.Value >= 1 && priority.Value <= highPriorityCeiling {
			view.PriorityTier = domain.TierHigh
		}
	}

	view.CreatedByID, view.CreatedByName, view.CreatedByEmail = resolveUser(Coerce(raw.CreatedBy), users)
	if assignee := Coerce(raw.AssigneeID); assignee.Present {
		view.AssigneeID, view.AssigneeName, view.AssigneeEmail = resolveUser(assignee, users)
	}

	if t, ok := CoerceNanos(raw.CreatedAt); ok {
		view.CreatedAt = t
		view.CreatedAtDisplay = opts.formatTicketTime(t)
	}
	if t, ok := CoerceNanos(raw.UpdatedAt); ok {
		view.UpdatedAt = t
		view.UpdatedAtDisplay = opts.formatTicketTime(t)
	}
	if t, ok := CoerceNanos(raw.ResolvedAt); ok {
		view.ResolvedAt = t
		view.ResolvedAtDisplay = opts.formatTicketTime(t)
	}

	view.MessageCount = raw.Messages.Len()
	if raw.Messages.Sequence {
		view.Messages = make([]domain.MessageView, 0, len(raw.Messages.Items))
		for _, msg := range raw.Messages.Items {
			if msg == nil {
				continue
			}
			view.Messages = append(view.Messages, buildMessage(msg, users, opts))
		}
	}
	return view
}

func buildMessage(raw *domain.RawMessage, users UserIndex, opts Options) domain.MessageView {
	msg := domain.MessageView{
		ID:               IDOrZero(raw.ID),
		Content:          textOr(raw.Content, ""),
		CreatedAtDisplay: UnknownDate,
	}
	msg.UserID, msg.AuthorName, _ = resolveUser(Coerce(raw.UserID), users)
	if t, ok := CoerceNanos(raw.CreatedAt); ok {
		msg.CreatedAtDisplay = t.In(opts.Location).Format(opts.MessageDateLayout)
	}
	return msg
}

func resolveUser(id Coerced, users UserIndex) (int64, string, string) {
	if !id.Valid || id.Value <= 0 {
		return 0, unresolvedUserName, ""
	}
	user, ok := users.Lookup(id.Value)
	if !ok {
		return id.Value, placeholderName(id.Value), ""
	}
	return id.Value, textOr(user.Name, placeholderName(id.Value)), textOr(user.Email, "")
}

func defaultTicket() domain.TicketView {
	return domain.TicketView{
		Title:            DefaultTitle,
		Description:      DefaultDescription,
		StatusLabel:      domain.StatusOpen,
		TypeLabel:        DefaultTypeLabel,
		PriorityTier:     domain.TierNormal,
		CreatedByName:    unresolvedUserName,
		AssigneeName:     UnassignedName,
		CreatedAtDisplay: UnknownDate,
		UpdatedAtDisplay: UnknownDate,
		Messages:         []domain.MessageView{},
	}
}

func malformedTicket(diagnostic string) *domain.TicketView {
	view := defaultTicket()
	view.Title = MalformedTitle
	if strings.TrimSpace(diagnostic) == "" {
		diagnostic = "unknown failure"
	}
	view.Diagnostic = diagnostic
	return &view
}

func placeholderName(id int64) string {
	if id <= 0 {
		return unresolvedUserName
	}
	return "User #" + strconv.FormatInt(id, 10)
}

func textOr(t domain.WireText, fallback string) string {
	value, ok := t.Value()
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
