package dto

import (
	"time"

	"github.com/vex-labs/ticket-view/internal/domain"
)

// TicketListQuery captures the query string of GET /tickets.
type TicketListQuery struct {
	Tab      string `query:"tab"`
	Search   string `query:"q"`
	Tier     string `query:"tier"`
	Sort     string `query:"sort"`
	Desc     string `query:"desc"`
	Page     string `query:"page"`
	PageSize string `query:"page_size"`
}

// ListMeta describes the returned page.
type ListMeta struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	Pages     int `json:"pages"`
	Total     int `json:"total"`
	Malformed int `json:"malformed"`
}

// PersonRef is a resolved creator or assignee.
type PersonRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// TicketSummary is the list representation of a ticket.
type TicketSummary struct {
	ID           int64               `json:"id"`
	Title        string              `json:"title"`
	Status       domain.StatusLabel  `json:"status"`
	Type         string              `json:"type"`
	Priority     int64               `json:"priority"`
	PriorityTier domain.PriorityTier `json:"priority_tier"`
	CreatedBy    PersonRef           `json:"created_by"`
	Assignee     PersonRef           `json:"assignee"`
	CreatedAt    string              `json:"created_at"`
	MessageCount int                 `json:"message_count"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string                  `json:"description"`
	UpdatedAt   string                  `json:"updated_at"`
	ResolvedAt  string                  `json:"resolved_at,omitempty"`
	CreatedAtTS *time.Time              `json:"created_at_ts,omitempty"`
	Messages    []TicketMessageResponse `json:"messages"`
}

// TicketMessageResponse represents thread message.
type TicketMessageResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// MalformedTicketResponse reports a record that could not be rendered.
type MalformedTicketResponse struct {
	Title      string `json:"title"`
	Diagnostic string `json:"diagnostic"`
}

// CreateTicketRequest payload. CreatedBy and Priority may be numbers or
// decimal strings; an empty type selects the default type.
type CreateTicketRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"ticket_type"`
	CreatedBy   domain.WireInt `json:"created_by"`
	Priority    domain.WireInt `json:"priority"`
}

// UpdateTicketRequest payload. Absent or null fields are kept.
type UpdateTicketRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Type        *string        `json:"ticket_type"`
	Priority    domain.WireInt `json:"priority"`
}

// UpdateStatusRequest payload. Status accepts UI labels and backend keys.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateMessageRequest payload. UserID may be a number or a decimal string.
type CreateMessageRequest struct {
	UserID  domain.WireInt `json:"user_id"`
	Content string         `json:"content"`
}

// AssignRequest payload. A null or missing assignee clears the assignment.
type AssignRequest struct {
	AssigneeID domain.WireInt `json:"assignee_id"`
}

// CommandAccepted acknowledges a delegated command. The id of the target is
// omitted when the backend did not report one.
type CommandAccepted struct {
	TicketID int64  `json:"ticket_id,omitempty"`
	UserID   int64  `json:"user_id,omitempty"`
	Status   string `json:"status"`
}

// NewTicketSummary maps a view to its list representation.
func NewTicketSummary(t domain.TicketView) TicketSummary {
	return TicketSummary{
		ID:           t.ID,
		Title:        t.Title,
		Status:       t.StatusLabel,
		Type:         t.TypeLabel,
		Priority:     t.Priority,
		PriorityTier: t.PriorityTier,
		CreatedBy:    PersonRef{ID: t.CreatedByID, Name: t.CreatedByName, Email: t.CreatedByEmail},
		Assignee:     PersonRef{ID: t.AssigneeID, Name: t.AssigneeName, Email: t.AssigneeEmail},
		CreatedAt:    t.CreatedAtDisplay,
		MessageCount: t.MessageCount,
	}
}

// NewTicketDetail maps a view to its detail representation.
func NewTicketDetail(t domain.TicketView) TicketDetailResponse {
	detail := TicketDetailResponse{
		TicketSummary: NewTicketSummary(t),
		Description:   t.Description,
		UpdatedAt:     t.UpdatedAtDisplay,
		ResolvedAt:    t.ResolvedAtDisplay,
		Messages:      make([]TicketMessageResponse, 0, len(t.Messages)),
	}
	if !t.CreatedAt.IsZero() {
		created := t.CreatedAt
		detail.CreatedAtTS = &created
	}
	for _, msg := range t.Messages {
		detail.Messages = append(detail.Messages, TicketMessageResponse{
			ID:        msg.ID,
			UserID:    msg.UserID,
			Author:    msg.AuthorName,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAtDisplay,
		})
	}
	return detail
}
