package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vex-labs/ticket-view/internal/api/dto"
	"github.com/vex-labs/ticket-view/internal/domain"
	"github.com/vex-labs/ticket-view/internal/service"
	"github.com/vex-labs/ticket-view/internal/viewmodel"
	apperrors "github.com/vex-labs/ticket-view/pkg/util/errorutil"
)

// TicketsHandler serves ticket views and forwards ticket commands.
type TicketsHandler struct {
	service *service.ViewService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(viewService *service.ViewService) *TicketsHandler {
	return &TicketsHandler{service: viewService}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	state, err := parseViewState(c)
	if err != nil {
		return err
	}
	view, err := h.service.ListTickets(c.UserContext(), state)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(view.Tickets))
	for _, ticket := range view.Tickets {
		items = append(items, dto.NewTicketSummary(ticket))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.ListMeta{
			Page:      view.Page.Number,
			PageSize:  view.Page.Size,
			Pages:     view.Page.Pages,
			Total:     view.Page.Total,
			Malformed: len(view.Malformed),
		},
	})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(*ticket)})
}

// CreateTicket POST /tickets. The echoed record is returned when the backend
// sent one; otherwise the command is only acknowledged.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	createdBy := viewmodel.Coerce(req.CreatedBy)
	if !createdBy.Valid {
		return apperrors.NewValidationError("created_by must be an integer", nil)
	}
	priority := viewmodel.Coerce(req.Priority)
	if !priority.Valid {
		return apperrors.NewValidationError("priority must be an integer", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		CreatedBy:   createdBy.Value,
		Priority:    priority.Value,
	})
	if err != nil {
		return err
	}
	if ticket == nil || !ticket.Valid() {
		return accepted(c, 0)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketDetail(*ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	edit := service.TicketEdit{Title: req.Title, Description: req.Description, Type: req.Type}
	if priority := viewmodel.Coerce(req.Priority); priority.Present {
		if !priority.Valid {
			return apperrors.NewValidationError("priority must be an integer", nil)
		}
		edit.Priority = &priority.Value
	}
	if err := h.service.UpdateTicket(c.UserContext(), id, edit); err != nil {
		return err
	}
	return accepted(c, id)
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.UserContext(), id); err != nil {
		return err
	}
	return accepted(c, id)
}

// UpdateStatus POST /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Status) == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	if err := h.service.UpdateStatus(c.UserContext(), id, req.Status); err != nil {
		return err
	}
	return accepted(c, id)
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	userID := viewmodel.Coerce(req.UserID)
	if !userID.Valid {
		return apperrors.NewValidationError("user_id must be an integer", nil)
	}
	if err := h.service.AddMessage(c.UserContext(), id, userID.Value, req.Content); err != nil {
		return err
	}
	return accepted(c, id)
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	var assignee *int64
	if coerced := viewmodel.Coerce(req.AssigneeID); coerced.Present {
		if !coerced.Valid {
			return apperrors.NewValidationError("assignee_id must be an integer or null", nil)
		}
		assignee = &coerced.Value
	}
	if err := h.service.Assign(c.UserContext(), id, assignee); err != nil {
		return err
	}
	return accepted(c, id)
}

func accepted(c *fiber.Ctx, ticketID int64) error {
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": dto.CommandAccepted{TicketID: ticketID, Status: "accepted"}})
}

func ticketIDParam(c *fiber.Ctx) (int64, error) {
	return idParam(c, "ticket")
}

func idParam(c *fiber.Ctx, resource string) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(resource+" id must be a positive integer", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func parseViewState(c *fiber.Ctx) (domain.ViewState, error) {
	var q dto.TicketListQuery
	if err := c.QueryParser(&q); err != nil {
		return domain.ViewState{}, apperrors.NewValidationError("invalid query", nil)
	}
	state := domain.ViewState{SearchQuery: q.Search, ActiveTab: viewmodel.TabAll}

	if tab := strings.TrimSpace(q.Tab); tab != "" && !strings.EqualFold(tab, viewmodel.TabAll) {
		label, ok := viewmodel.ParseStatusLabel(tab)
		if !ok {
			return state, apperrors.NewValidationError("unknown tab", map[string]any{"tab": q.Tab})
		}
		state.ActiveTab = string(label)
	}
	if tier := strings.TrimSpace(q.Tier); tier != "" {
		state.PriorityTier = viewmodel.ParseTier(tier)
		if state.PriorityTier == "" {
			return state, apperrors.NewValidationError("unknown tier", map[string]any{"tier": q.Tier})
		}
	}
	if sortBy := strings.TrimSpace(q.Sort); sortBy != "" {
		state.SortBy = viewmodel.ParseSortKey(sortBy)
		if state.SortBy == domain.SortNone {
			return state, apperrors.NewValidationError("unknown sort key", map[string]any{"sort": q.Sort})
		}
	}
	if q.Desc != "" {
		desc, err := strconv.ParseBool(q.Desc)
		if err != nil {
			return state, apperrors.NewValidationError("desc must be a boolean", nil)
		}
		state.SortDesc = desc
	}

	var err error
	if state.Page, err = nonNegativeInt(q.Page, 1); err != nil || state.Page == 0 {
		return state, apperrors.NewValidationError("page must be a positive integer", nil)
	}
	if state.PageSize, err = nonNegativeInt(q.PageSize, 0); err != nil {
		return state, apperrors.NewValidationError("page_size must be a non-negative integer", nil)
	}
	return state, nil
}

func nonNegativeInt(raw string, fallback int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
