package domain

// SortKey selects an explicit ordering. The zero value keeps source order.
type SortKey string

const (
	SortNone      SortKey = ""
	SortID        SortKey = "id"
	SortCreatedAt SortKey = "created_at"
	SortUpdatedAt SortKey = "updated_at"
	SortPriority  SortKey = "priority"
)

// ViewState is the caller-owned UI state a list view is derived from.
type ViewState struct {
	// ActiveTab is "all" (or empty) or one of the status labels.
	ActiveTab   string
	SearchQuery string
	// PriorityTier is empty when no tier is selected.
	PriorityTier PriorityTier
	SortBy       SortKey
	SortDesc     bool
	// Page is 1-based; PageSize <= 0 disables pagination.
	Page     int
	PageSize int
}
