package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Coconut044/SmartTicketSystem/internal/config"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/events"
	"github.com/Coconut044/SmartTicketSystem/internal/repository"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// NotificationService writes notification records and exposes the per-user
// notification inbox. Delivery beyond the record (webhook) is a logged stub.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(notificationRepo repository.NotificationRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		notifications: notificationRepo,
		logger:        logger,
		cfg:           cfg,
	}
}

// Notify appends a notification record for the user. When called inside a
// lifecycle transaction the write joins it, so a failure rolls the whole
// operation back rather than leaving the ticket out of sync with its
// notifications.
func (n *NotificationService) Notify(ctx context.Context, userID string, ticketID *string, title, message string) error {
	notification := &domain.Notification{
		UserID:   userID,
		TicketID: ticketID,
		Title:    title,
		Message:  message,
		IsRead:   false,
	}
	return n.notifications.Create(ctx, notification)
}

// ListForUser returns the user's notifications, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	list, err := n.notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, util.MapError(err)
	}
	return list, nil
}

// UnreadCount returns the number of unread notifications.
func (n *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := n.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, util.MapError(err)
	}
	return count, nil
}

// MarkRead marks one notification read, scoped to the owner.
func (n *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := n.notifications.MarkRead(ctx, id, userID); err != nil {
		return util.MapError(err)
	}
	return nil
}

// MarkAllRead marks every unread notification for the user.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := n.notifications.MarkAllRead(ctx, userID); err != nil {
		return util.MapError(err)
	}
	return nil
}

// RegisterHandlers subscribes the webhook stub to ticket events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, n.handleEvent)
	dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleEvent)
	dispatcher.Subscribe(events.EventTicketAssigned, n.handleEvent)
	dispatcher.Subscribe(events.EventTicketEscalated, n.handleEvent)
	dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
