package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vex-labs/ticket-view/internal/domain"
	"github.com/vex-labs/ticket-view/internal/events"
	"github.com/vex-labs/ticket-view/internal/observability"
	"github.com/vex-labs/ticket-view/internal/repository"
	"github.com/vex-labs/ticket-view/internal/viewmodel"
	apperrors "github.com/vex-labs/ticket-view/pkg/util/errorutil"
)

const messagePreviewLength = 80

// Invalidator drops cached snapshots after a delegated command.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// ViewService renders the ticket and user collections of a source.
type ViewService struct {
	tickets         repository.TicketRepository
	users           repository.UserRepository
	commander       repository.TicketCommander
	userCommander   repository.UserCommander
	invalidator     Invalidator
	dispatcher      events.Dispatcher
	metrics         *observability.Metrics
	logger          *zap.Logger
	opts            viewmodel.Options
	defaultPageSize int
}

// ViewDependencies bundles collaborators for the view service. Commander,
// UserCommander and Invalidator are optional.
type ViewDependencies struct {
	Tickets         repository.TicketRepository
	Users           repository.UserRepository
	Commander       repository.TicketCommander
	UserCommander   repository.UserCommander
	Invalidator     Invalidator
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
	Options         viewmodel.Options
	DefaultPageSize int
}

// NewViewService creates the service.
func NewViewService(deps ViewDependencies) *ViewService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewService{
		tickets:         deps.Tickets,
		users:           deps.Users,
		commander:       deps.Commander,
		userCommander:   deps.UserCommander,
		invalidator:     deps.Invalidator,
		dispatcher:      deps.Dispatcher,
		metrics:         deps.Metrics,
		logger:          logger,
		opts:            deps.Options,
		defaultPageSize: deps.DefaultPageSize,
	}
}

// ListTickets renders the visible page of tickets for a view state. A zero
// page size falls back to the configured default.
func (s *ViewService) ListTickets(ctx context.Context, state domain.ViewState) (viewmodel.View, error) {
	sanitized, err := s.snapshot(ctx)
	if err != nil {
		return viewmodel.View{}, err
	}
	if state.PageSize == 0 {
		state.PageSize = s.defaultPageSize
	}
	return viewmodel.ViewOf(sanitized, state), nil
}

// GetTicket returns one valid ticket by id.
func (s *ViewService) GetTicket(ctx context.Context, id int64) (*domain.TicketView, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("ticket id must be a positive integer", map[string]any{"id": id})
	}
	sanitized, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sanitized {
		if sanitized[i].Valid() && sanitized[i].ID == id {
			ticket := sanitized[i]
			return &ticket, nil
		}
	}
	return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
}

// ListUsers renders every user.
func (s *ViewService) ListUsers(ctx context.Context) ([]domain.UserView, error) {
	users, err := s.users.FetchAllUsers(ctx)
	if err != nil {
		return nil, apperrors.NewUpstreamError(err)
	}
	return viewmodel.SanitizeUsers(users, s.opts), nil
}

// Stats summarises the valid tickets.
func (s *ViewService) Stats(ctx context.Context) (domain.TicketStats, error) {
	sanitized, err := s.snapshot(ctx)
	if err != nil {
		return domain.TicketStats{}, err
	}
	return viewmodel.ComputeStats(sanitized, s.opts), nil
}

// UpdateStatus forwards a status change. The status may be any spelling
// NormalizeStatusLabel understands, but unknown values are rejected.
func (s *ViewService) UpdateStatus(ctx context.Context, ticketID int64, status string) error {
	if err := s.checkCommand(ticketID); err != nil {
		return err
	}
	label, ok := viewmodel.ParseStatusLabel(status)
	if !ok {
		return apperrors.NewValidationError("unknown status", map[string]any{
			"status":  status,
			"allowed": domain.StatusLabels,
		})
	}
	if err := s.commander.UpdateStatus(ctx, ticketID, viewmodel.EncodeStatus(label)); err != nil {
		return apperrors.NewUpstreamError(err)
	}
	s.afterCommand(ctx, events.Event{
		Type:     events.EventTicketStatusRequested,
		TicketID: ticketID,
		Actor:    serviceActor(),
		Payload:  events.TicketStatusRequestedPayload{Status: string(label)},
	})
	return nil
}

// AddMessage forwards a new thread message.
func (s *ViewService) AddMessage(ctx context.Context, ticketID, userID int64, content string) error {
	if err := s.checkCommand(ticketID); err != nil {
		return err
	}
	content = strings.TrimSpace(content)
	if userID <= 0 {
		return apperrors.NewValidationError("user id must be a positive integer", map[string]any{"user_id": userID})
	}
	if content == "" {
		return apperrors.NewValidationError("message content is required", nil)
	}
	if err := s.commander.AddMessage(ctx, ticketID, userID, content); err != nil {
		return apperrors.NewUpstreamError(err)
	}
	s.afterCommand(ctx, events.Event{
		Type:     events.EventTicketMessagePosted,
		TicketID: ticketID,
		Actor:    userActor(userID),
		Payload:  events.TicketMessagePostedPayload{BodyPreview: stringPreview(content, messagePreviewLength)},
	})
	return nil
}

// Assign forwards an assignment; a nil assignee clears it.
func (s *ViewService) Assign(ctx context.Context, ticketID int64, assigneeID *int64) error {
	if err := s.checkCommand(ticketID); err != nil {
		return err
	}
	if assigneeID != nil && *assigneeID <= 0 {
		return apperrors.NewValidationError("assignee id must be a positive integer", map[string]any{"assignee_id": *assigneeID})
	}
	if err := s.commander.Assign(ctx, ticketID, assigneeID); err != nil {
		return apperrors.NewUpstreamError(err)
	}
	s.afterCommand(ctx, events.Event{
		Type:     events.EventTicketAssignRequested,
		TicketID: ticketID,
		Actor:    serviceActor(),
		Payload:  events.TicketAssignRequestedPayload{AssigneeID: assigneeID},
	})
	return nil
}

// Refresh drops cached snapshots and fetches fresh ones, reporting error
// records as it would for a list request.
func (s *ViewService) Refresh(ctx context.Context) error {
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil {
			s.logger.Warn("snapshot invalidation failed", zap.Error(err))
		}
	}
	_, err := s.snapshot(ctx)
	return err
}

// snapshot fetches both collections and sanitizes the tickets. Error records
// are reported through events and kept in the result.
func (s *ViewService) snapshot(ctx context.Context) ([]domain.TicketView, error) {
	rawTickets, err := s.tickets.FetchAllTickets(ctx)
	if err != nil {
		s.logger.Warn("fetch tickets failed", zap.Error(err))
		return nil, apperrors.NewUpstreamError(err)
	}
	rawUsers, err := s.users.FetchAllUsers(ctx)
	if err != nil {
		s.logger.Warn("fetch users failed", zap.Error(err))
		return nil, apperrors.NewUpstreamError(err)
	}

	sanitized := viewmodel.SanitizeAll(rawTickets, viewmodel.NewUserIndex(rawUsers), s.opts)
	malformed := viewmodel.Malformed(sanitized)
	for _, ticket := range malformed {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventTicketMalformed,
			Actor:   serviceActor(),
			Payload: events.TicketMalformedPayload{Diagnostic: ticket.Diagnostic},
		})
	}
	s.publishEvent(ctx, events.Event{
		Type:  events.EventSnapshotFetched,
		Actor: serviceActor(),
		Payload: events.SnapshotFetchedPayload{
			Tickets:   len(sanitized),
			Users:     len(rawUsers),
			Malformed: len(malformed),
		},
	})
	return sanitized, nil
}

func (s *ViewService) checkCommand(ticketID int64) error {
	if s.commander == nil {
		return apperrors.NewNotImplemented("ticket commands")
	}
	if ticketID <= 0 {
		return apperrors.NewValidationError("ticket id must be a positive integer", map[string]any{"id": ticketID})
	}
	return nil
}

func (s *ViewService) checkUserCommand(userID int64) error {
	if s.userCommander == nil {
		return apperrors.NewNotImplemented("user commands")
	}
	if userID <= 0 {
		return apperrors.NewValidationError("user id must be a positive integer", map[string]any{"id": userID})
	}
	return nil
}

func (s *ViewService) afterCommand(ctx context.Context, event events.Event) {
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil {
			s.logger.Warn("snapshot invalidation failed",
				zap.String("event_type", string(event.Type)), zap.Int64("ticket_id", event.TicketID), zap.Error(err))
			s.publishEvent(ctx, events.Event{
				Type:     events.EventSnapshotInvalidateFailed,
				TicketID: event.TicketID,
				Actor:    serviceActor(),
				Payload:  events.SnapshotInvalidateFailedPayload{Error: err.Error()},
			})
		}
	}
	s.publishEvent(ctx, event)
}

func (s *ViewService) publishEvent(ctx context.Context, event events.Event) {
	s.metrics.RecordEvent(string(event.Type))
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func serviceActor() events.Actor {
	return events.Actor{Kind: "service"}
}

func userActor(userID int64) events.Actor {
	return events.Actor{Kind: "user", UserID: &userID}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
