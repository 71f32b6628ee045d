package service

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/vex-labs/ticket-view/internal/domain"
	"github.com/vex-labs/ticket-view/internal/events"
	"github.com/vex-labs/ticket-view/internal/repository"
	"github.com/vex-labs/ticket-view/internal/viewmodel"
	apperrors "github.com/vex-labs/ticket-view/pkg/util/errorutil"
)

const (
	minPriority = 1
	maxPriority = 5
)

// TicketInput is a ticket creation request. Type accepts any spelling of
// viewmodel.TicketTypes; an empty type selects the default type.
type TicketInput struct {
	Title       string
	Description string
	Type        string
	CreatedBy   int64
	Priority    int64
}

// TicketEdit lists the ticket fields to change. Nil fields are kept.
type TicketEdit struct {
	Title       *string
	Description *string
	Type        *string
	Priority    *int64
}

// UserEdit lists the user fields to change. Nil fields are kept.
type UserEdit struct {
	Name  *string
	Email *string
}

// CreateTicket forwards a new ticket and returns the rendered record the
// backend echoed, or nil when it echoed nothing.
func (s *ViewService) CreateTicket(ctx context.Context, in TicketInput) (*domain.TicketView, error) {
	if s.commander == nil {
		return nil, apperrors.NewNotImplemented("ticket commands")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if in.CreatedBy <= 0 {
		return nil, apperrors.NewValidationError("created_by must be a positive integer", map[string]any{"created_by": in.CreatedBy})
	}
	if err := checkPriority(in.Priority); err != nil {
		return nil, err
	}
	typeName := in.Type
	if strings.TrimSpace(typeName) == "" {
		typeName = viewmodel.DefaultTypeLabel
	}
	ticketType, err := parseTicketType(typeName)
	if err != nil {
		return nil, err
	}

	raw, err := s.commander.CreateTicket(ctx, domain.NewTicket{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		TicketType:  ticketType,
		CreatedBy:   in.CreatedBy,
		Priority:    in.Priority,
	})
	if err != nil {
		return nil, commandError(err, "ticket", 0)
	}

	var view *domain.TicketView
	if raw != nil {
		view = viewmodel.Sanitize(raw, s.userIndex(ctx), s.opts)
	}
	event := events.Event{
		Type:  events.EventTicketCreated,
		Actor: userActor(in.CreatedBy),
		Payload: events.TicketCreatedPayload{
			Title:    title,
			Type:     viewmodel.NormalizeType(ticketType),
			Priority: in.Priority,
		},
	}
	if view != nil && view.Valid() {
		event.TicketID = view.ID
	}
	s.afterCommand(ctx, event)
	return view, nil
}

// UpdateTicket forwards a partial edit of the ticket fields.
func (s *ViewService) UpdateTicket(ctx context.Context, ticketID int64, edit TicketEdit) error {
	if err := s.checkCommand(ticketID); err != nil {
		return err
	}
	var changes domain.TicketChanges
	var fields []string
	if edit.Title != nil {
		title := strings.TrimSpace(*edit.Title)
		if title == "" {
			return apperrors.NewValidationError("title cannot be blank", nil)
		}
		changes.Title = &title
		fields = append(fields, "title")
	}
	if edit.Description != nil {
		description := strings.TrimSpace(*edit.Description)
		changes.Description = &description
		fields = append(fields, "description")
	}
	if edit.Type != nil {
		ticketType, err := parseTicketType(*edit.Type)
		if err != nil {
			return err
		}
		changes.TicketType = &ticketType
		fields = append(fields, "ticket_type")
	}
	if edit.Priority != nil {
		if err := checkPriority(*edit.Priority); err != nil {
			return err
		}
		changes.Priority = edit.Priority
		fields = append(fields, "priority")
	}
	if changes.Empty() {
		return apperrors.NewValidationError("nothing to update", nil)
	}

	if err := s.commander.UpdateTicket(ctx, ticketID, changes); err != nil {
		return commandError(err, "ticket", ticketID)
	}
	s.afterCommand(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticketID,
		Actor:    serviceActor(),
		Payload:  events.TicketUpdatedPayload{Fields: fields},
	})
	return nil
}

// DeleteTicket forwards a ticket deletion.
func (s *ViewService) DeleteTicket(ctx context.Context, ticketID int64) error {
	if err := s.checkCommand(ticketID); err != nil {
		return err
	}
	if err := s.commander.DeleteTicket(ctx, ticketID); err != nil {
		return commandError(err, "ticket", ticketID)
	}
	s.afterCommand(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
		Actor:    serviceActor(),
	})
	return nil
}

// GetUser returns one user of the current snapshot.
func (s *ViewService) GetUser(ctx context.Context, userID int64) (*domain.UserView, error) {
	if userID <= 0 {
		return nil, apperrors.NewValidationError("user id must be a positive integer", map[string]any{"id": userID})
	}
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == userID {
			user := users[i]
			return &user, nil
		}
	}
	return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
}

// CreateUser forwards a new user. Both name and email are required.
func (s *ViewService) CreateUser(ctx context.Context, name, email string) (*domain.UserView, error) {
	if s.userCommander == nil {
		return nil, apperrors.NewNotImplemented("user commands")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	email, err := checkEmail(email)
	if err != nil {
		return nil, err
	}

	raw, err := s.userCommander.CreateUser(ctx, name, email)
	if err != nil {
		return nil, commandError(err, "user", 0)
	}
	view := viewmodel.SanitizeUser(raw, s.opts)
	var userID int64
	if view != nil {
		userID = view.ID
	}
	s.afterCommand(ctx, events.Event{
		Type:    events.EventUserCreated,
		Actor:   serviceActor(),
		Payload: events.UserChangedPayload{UserID: userID},
	})
	return view, nil
}

// UpdateUser forwards a partial edit of a user.
func (s *ViewService) UpdateUser(ctx context.Context, userID int64, edit UserEdit) (*domain.UserView, error) {
	if err := s.checkUserCommand(userID); err != nil {
		return nil, err
	}
	var changes domain.UserChanges
	var fields []string
	if edit.Name != nil {
		name := strings.TrimSpace(*edit.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be blank", nil)
		}
		changes.Name = &name
		fields = append(fields, "name")
	}
	if edit.Email != nil {
		email, err := checkEmail(*edit.Email)
		if err != nil {
			return nil, err
		}
		changes.Email = &email
		fields = append(fields, "email")
	}
	if changes.Empty() {
		return nil, apperrors.NewValidationError("nothing to update", nil)
	}

	raw, err := s.userCommander.UpdateUser(ctx, userID, changes)
	if err != nil {
		return nil, commandError(err, "user", userID)
	}
	s.afterCommand(ctx, events.Event{
		Type:    events.EventUserUpdated,
		Actor:   userActor(userID),
		Payload: events.UserChangedPayload{UserID: userID, Fields: fields},
	})
	return viewmodel.SanitizeUser(raw, s.opts), nil
}

// DeleteUser forwards a user deletion.
func (s *ViewService) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.checkUserCommand(userID); err != nil {
		return err
	}
	if err := s.userCommander.DeleteUser(ctx, userID); err != nil {
		return commandError(err, "user", userID)
	}
	s.afterCommand(ctx, events.Event{
		Type:    events.EventUserDeleted,
		Actor:   serviceActor(),
		Payload: events.UserChangedPayload{UserID: userID},
	})
	return nil
}

// userIndex resolves names for an echoed record. A failed fetch leaves the
// names as placeholders.
func (s *ViewService) userIndex(ctx context.Context) viewmodel.UserIndex {
	users, err := s.users.FetchAllUsers(ctx)
	if err != nil {
		s.logger.Warn("fetch users failed", zap.Error(err))
		return viewmodel.UserIndex{}
	}
	return viewmodel.NewUserIndex(users)
}

func parseTicketType(name string) (domain.Variant, error) {
	ticketType, ok := viewmodel.ParseTicketType(name)
	if !ok {
		return domain.Variant{}, apperrors.NewValidationError("unknown ticket type", map[string]any{
			"type":    name,
			"allowed": viewmodel.TicketTypes,
		})
	}
	return ticketType, nil
}

func checkPriority(priority int64) error {
	if priority < minPriority || priority > maxPriority {
		return apperrors.NewValidationError("priority must be between 1 and 5", map[string]any{"priority": priority})
	}
	return nil
}

func checkEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.NewValidationError("email must be a plain address", map[string]any{"email": email})
	}
	return email, nil
}

// commandError maps a backend 404 to a not found error and anything else to
// an upstream failure.
func commandError(err error, resource string, id int64) error {
	var svcErr *repository.ServiceError
	if id > 0 && errors.As(err, &svcErr) && svcErr.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.NewUpstreamError(err)
}
