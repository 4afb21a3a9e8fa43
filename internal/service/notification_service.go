package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/certtrack-service/internal/config"
	"github.com/spec-kit/certtrack-service/internal/events"
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
	n.dispatcher.Subscribe(events.EventProfileUpdated, n.handleProfileUpdated)
	n.dispatcher.Subscribe(events.EventSyncCompleted, n.handleSyncCompleted)
	n.dispatcher.Subscribe(events.EventImportCompleted, n.handleImportCompleted)
}

func (n *NotificationService) handleProfileUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("ProfileUpdated", zap.String("email", event.Email), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSyncCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("SyncCompleted", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleImportCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("ImportCompleted", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
