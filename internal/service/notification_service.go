package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vex-labs/ticket-view/internal/config"
	"github.com/vex-labs/ticket-view/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketMalformed, n.handleTicketMalformed)
	n.dispatcher.Subscribe(events.EventTicketStatusRequested, n.handleTicketStatusRequested)
	n.dispatcher.Subscribe(events.EventTicketAssignRequested, n.handleTicketAssignRequested)
	n.dispatcher.Subscribe(events.EventTicketMessagePosted, n.handleTicketMessagePosted)
	n.dispatcher.Subscribe(events.EventSnapshotInvalidateFailed, n.handleSnapshotInvalidateFailed)
	for _, eventType := range []events.EventType{events.EventTicketCreated, events.EventTicketUpdated, events.EventTicketDeleted} {
		n.dispatcher.Subscribe(eventType, n.handleTicketChanged)
	}
	for _, eventType := range []events.EventType{events.EventUserCreated, events.EventUserUpdated, events.EventUserDeleted} {
		n.dispatcher.Subscribe(eventType, n.handleUserChanged)
	}
}

func (n *NotificationService) handleTicketMalformed(ctx context.Context, event events.Event) error {
	n.logger.Warn("TicketMalformed", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusRequested", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssignRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssignRequested", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketMessagePosted(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketMessagePosted", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketChanged",
		zap.String("event_type", string(event.Type)),
		zap.Int64("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserChanged(_ context.Context, event events.Event) error {
	n.logger.Info("UserChanged", zap.String("event_type", string(event.Type)), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleSnapshotInvalidateFailed(_ context.Context, event events.Event) error {
	n.logger.Error("SnapshotInvalidateFailed", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
