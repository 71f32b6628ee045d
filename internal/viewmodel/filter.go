package viewmodel

import (
	"cmp"
	"slices"
	"strings"

	"github.com/vex-labs/ticket-view/internal/domain"
)

const (
	// TabAll passes every valid ticket.
	TabAll = "all"
	// MaxPageSize caps caller supplied page sizes.
	MaxPageSize = 100
)

// Page describes the slice of a filtered list that was returned.
type Page struct {
	Number int
	Size   int
	Pages  int
	Total  int
}

// Filter derives the visible tickets from a sanitized collection. Steps run
// in a fixed order: invalid records, tab, search, tier. Source order is kept
// and the input slice is never modified.
func Filter(tickets []domain.TicketView, state domain.ViewState) []domain.TicketView {
	tab := normalizeTab(state.ActiveTab)
	query := strings.ToLower(strings.TrimSpace(state.SearchQuery))

	out := make([]domain.TicketView, 0, len(tickets))
	for _, ticket := range tickets {
		if !ticket.Valid() {
			continue
		}
		if tab != "" && string(ticket.StatusLabel) != tab {
			continue
		}
		if query != "" && !matchesQuery(ticket, query) {
			continue
		}
		if state.PriorityTier != "" && ticket.PriorityTier != state.PriorityTier {
			continue
		}
		out = append(out, ticket)
	}
	return out
}

// Sort returns a stably sorted copy. SortNone returns an unsorted copy.
func Sort(tickets []domain.TicketView, key domain.SortKey, desc bool) []domain.TicketView {
	out := slices.Clone(tickets)
	compare := comparator(key)
	if compare == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b domain.TicketView) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

// Paginate returns one page of tickets. A non-positive size returns
// everything as a single page; pages past the end are empty.
func Paginate(tickets []domain.TicketView, number, size int) ([]domain.TicketView, Page) {
	total := len(tickets)
	if size <= 0 {
		pages := 0
		if total > 0 {
			pages = 1
		}
		return slices.Clone(tickets), Page{Number: 1, Size: total, Pages: pages, Total: total}
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if number < 1 {
		number = 1
	}
	page := Page{Number: number, Size: size, Pages: (total + size - 1) / size, Total: total}
	start := (number - 1) * size
	if start >= total {
		return []domain.TicketView{}, page
	}
	end := min(start+size, total)
	return slices.Clone(tickets[start:end]), page
}

func normalizeTab(tab string) string {
	tab = strings.ToLower(strings.TrimSpace(tab))
	if tab == TabAll {
		return ""
	}
	return tab
}

func matchesQuery(ticket domain.TicketView, query string) bool {
	return strings.Contains(strings.ToLower(ticket.Title), query) ||
		strings.Contains(strings.ToLower(ticket.Description), query)
}

func comparator(key domain.SortKey) func(a, b domain.TicketView) int {
	switch key {
	case domain.SortID:
		return func(a, b domain.TicketView) int { return cmp.Compare(a.ID, b.ID) }
	case domain.SortCreatedAt:
		return func(a, b domain.TicketView) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case domain.SortUpdatedAt:
		return func(a, b domain.TicketView) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case domain.SortPriority:
		return func(a, b domain.TicketView) int { return cmp.Compare(a.Priority, b.Priority) }
	default:
		return nil
	}
}

// ParseSortKey reads a sort key; unknown keys keep source order.
func ParseSortKey(s string) domain.SortKey {
	switch key := domain.SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case domain.SortID, domain.SortCreatedAt, domain.SortUpdatedAt, domain.SortPriority:
		return key
	default:
		return domain.SortNone
	}
}
