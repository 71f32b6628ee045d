package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vex-labs/ticket-view/internal/domain"
)

const maxErrorBody = 512

// RemoteRepository talks JSON over HTTP to the VEX backend gateway.
type RemoteRepository struct {
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRemoteRepository builds a client for the gateway at baseURL.
func NewRemoteRepository(baseURL string, timeout time.Duration, logger *zap.Logger) *RemoteRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteRepository{baseURL: baseURL, timeout: timeout, logger: logger}
}

// FetchAllTickets implements TicketRepository.
func (r *RemoteRepository) FetchAllTickets(ctx context.Context) ([]*domain.RawTicket, error) {
	body, err := r.get(ctx, "fetch tickets", "/tickets")
	if err != nil {
		return nil, err
	}
	tickets, err := domain.DecodeTickets(body)
	if err != nil {
		return nil, &ServiceError{Op: "fetch tickets", Err: err}
	}
	return tickets, nil
}

// FetchAllUsers implements UserRepository.
func (r *RemoteRepository) FetchAllUsers(ctx context.Context) ([]*domain.RawUser, error) {
	body, err := r.get(ctx, "fetch users", "/users")
	if err != nil {
		return nil, err
	}
	users, err := domain.DecodeUsers(body)
	if err != nil {
		return nil, &ServiceError{Op: "fetch users", Err: err}
	}
	return users, nil
}

// CreateTicket implements TicketCommander.
func (r *RemoteRepository) CreateTicket(ctx context.Context, ticket domain.NewTicket) (*domain.RawTicket, error) {
	payload := map[string]any{
		"title":       ticket.Title,
		"description": ticket.Description,
		"ticket_type": ticket.TicketType,
		"created_by":  domain.WireIntFromInt64(ticket.CreatedBy),
		"priority":    domain.WireIntFromInt64(ticket.Priority),
	}
	body, err := r.send(ctx, "create ticket", "/tickets", fiber.Post, payload)
	if err != nil || emptyBody(body) {
		return nil, err
	}
	return domain.DecodeTicket(body, "created ticket"), nil
}

// UpdateTicket implements TicketCommander. Only the set fields are sent.
func (r *RemoteRepository) UpdateTicket(ctx context.Context, ticketID int64, changes domain.TicketChanges) error {
	payload := map[string]any{}
	if changes.Title != nil {
		payload["title"] = *changes.Title
	}
	if changes.Description != nil {
		payload["description"] = *changes.Description
	}
	if changes.TicketType != nil {
		payload["ticket_type"] = *changes.TicketType
	}
	if changes.Priority != nil {
		payload["priority"] = domain.WireIntFromInt64(*changes.Priority)
	}
	_, err := r.send(ctx, "update ticket", ticketPath(ticketID, ""), fiber.Put, payload)
	return err
}

// DeleteTicket implements TicketCommander.
func (r *RemoteRepository) DeleteTicket(ctx context.Context, ticketID int64) error {
	_, err := r.send(ctx, "delete ticket", ticketPath(ticketID, ""), fiber.Delete, nil)
	return err
}

// UpdateStatus implements TicketCommander.
func (r *RemoteRepository) UpdateStatus(ctx context.Context, ticketID int64, status domain.Variant) error {
	payload := map[string]any{"status": status}
	return r.post(ctx, "update status", ticketPath(ticketID, "status"), payload)
}

// AddMessage implements TicketCommander.
func (r *RemoteRepository) AddMessage(ctx context.Context, ticketID, userID int64, content string) error {
	payload := map[string]any{
		"user_id": domain.WireIntFromInt64(userID),
		"content": content,
	}
	return r.post(ctx, "add message", ticketPath(ticketID, "messages"), payload)
}

// Assign implements TicketCommander.
func (r *RemoteRepository) Assign(ctx context.Context, ticketID int64, assigneeID *int64) error {
	assignee := domain.AbsentWireInt()
	if assigneeID != nil {
		assignee = domain.WireIntFromInt64(*assigneeID)
	}
	payload := map[string]any{"assignee_id": assignee}
	return r.post(ctx, "assign", ticketPath(ticketID, "assign"), payload)
}

// CreateUser implements UserCommander.
func (r *RemoteRepository) CreateUser(ctx context.Context, name, email string) (*domain.RawUser, error) {
	payload := map[string]any{"name": name, "email": email}
	body, err := r.send(ctx, "create user", "/users", fiber.Post, payload)
	if err != nil || emptyBody(body) {
		return nil, err
	}
	return domain.DecodeUser(body), nil
}

// UpdateUser implements UserCommander. Only the set fields are sent.
func (r *RemoteRepository) UpdateUser(ctx context.Context, userID int64, changes domain.UserChanges) (*domain.RawUser, error) {
	payload := map[string]any{}
	if changes.Name != nil {
		payload["name"] = *changes.Name
	}
	if changes.Email != nil {
		payload["email"] = *changes.Email
	}
	body, err := r.send(ctx, "update user", userPath(userID), fiber.Put, payload)
	if err != nil || emptyBody(body) {
		return nil, err
	}
	return domain.DecodeUser(body), nil
}

// DeleteUser implements UserCommander.
func (r *RemoteRepository) DeleteUser(ctx context.Context, userID int64) error {
	_, err := r.send(ctx, "delete user", userPath(userID), fiber.Delete, nil)
	return err
}

// Ping checks that the gateway answers.
func (r *RemoteRepository) Ping(ctx context.Context) error {
	_, err := r.get(ctx, "ping", "/users")
	return err
}

func (r *RemoteRepository) get(ctx context.Context, op, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ServiceError{Op: op, Err: err}
	}
	agent := fiber.Get(r.baseURL+path).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON).
		Timeout(r.requestTimeout(ctx))
	return r.do(op, path, agent)
}

func (r *RemoteRepository) post(ctx context.Context, op, path string, payload any) error {
	_, err := r.send(ctx, op, path, fiber.Post, payload)
	return err
}

// send issues a request built by method. A nil payload sends no body.
func (r *RemoteRepository) send(ctx context.Context, op, path string, method func(url string) *fiber.Agent, payload any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ServiceError{Op: op, Err: err}
	}
	agent := method(r.baseURL+path).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON).
		Timeout(r.requestTimeout(ctx))
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		agent.ContentType(fiber.MIMEApplicationJSON).Body(body)
	}
	return r.do(op, path, agent)
}

func (r *RemoteRepository) do(op, path string, agent *fiber.Agent) ([]byte, error) {
	start := time.Now()
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		r.logger.Warn("ticket service request failed",
			zap.String("op", op), zap.String("path", path), zap.Errors("errors", errs))
		return nil, &ServiceError{Op: op, Err: errors.Join(errs...)}
	}
	r.logger.Debug("ticket service request",
		zap.String("op", op), zap.String("path", path),
		zap.Int("status", code), zap.Duration("latency", time.Since(start)))
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &ServiceError{Op: op, StatusCode: code, Body: string(body)}
	}
	return body, nil
}

func (r *RemoteRepository) requestTimeout(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return time.Millisecond
	}
	if r.timeout > 0 && r.timeout < remaining {
		return r.timeout
	}
	return remaining
}

func ticketPath(ticketID int64, action string) string {
	path := "/tickets/" + strconv.FormatInt(ticketID, 10)
	if action != "" {
		path += "/" + action
	}
	return path
}

func userPath(userID int64) string {
	return "/users/" + strconv.FormatInt(userID, 10)
}

func emptyBody(body []byte) bool {
	return len(bytes.TrimSpace(body)) == 0
}
