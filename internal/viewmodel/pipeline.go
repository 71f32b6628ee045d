package viewmodel

import "github.com/vex-labs/ticket-view/internal/domain"

// View is a rendered list: the visible page plus the records that failed to
// build.
type View struct {
	Tickets   []domain.TicketView
	Malformed []domain.TicketView
	Page      Page
}

// SanitizeAndFilter runs the full pipeline over one fetch and returns the
// tickets to render. It is a pure function of its arguments.
func SanitizeAndFilter(rawTickets []*domain.RawTicket, rawUsers []*domain.RawUser, state domain.ViewState, opts Options) []domain.TicketView {
	sanitized := SanitizeAll(rawTickets, NewUserIndex(rawUsers), opts)
	visible := Filter(sanitized, state)
	if state.SortBy != domain.SortNone {
		visible = Sort(visible, state.SortBy, state.SortDesc)
	}
	return visible
}

// BuildView is SanitizeAndFilter plus pagination and malformed-record
// reporting.
func BuildView(rawTickets []*domain.RawTicket, rawUsers []*domain.RawUser, state domain.ViewState, opts Options) View {
	sanitized := SanitizeAll(rawTickets, NewUserIndex(rawUsers), opts)
	return ViewOf(sanitized, state)
}

// ViewOf derives a View from already sanitized tickets.
func ViewOf(sanitized []domain.TicketView, state domain.ViewState) View {
	visible := Filter(sanitized, state)
	if state.SortBy != domain.SortNone {
		visible = Sort(visible, state.SortBy, state.SortDesc)
	}
	page, meta := Paginate(visible, state.Page, state.PageSize)
	return View{Tickets: page, Malformed: Malformed(sanitized), Page: meta}
}

// Malformed returns the error records of a sanitized collection.
func Malformed(sanitized []domain.TicketView) []domain.TicketView {
	out := []domain.TicketView{}
	for _, ticket := range sanitized {
		if ticket.Diagnostic != "" {
			out = append(out, ticket)
		}
	}
	return out
}
