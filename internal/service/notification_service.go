package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/events"
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
	n.dispatcher.Subscribe(events.EventPortalContactInvited, n.handlePortalContactInvited)
	n.dispatcher.Subscribe(events.EventPortalAccountActivated, n.handlePortalAccountActivated)
	n.dispatcher.Subscribe(events.EventUserRoleAssigned, n.handleUserRoleAssigned)
	n.dispatcher.Subscribe(events.EventTaskStatusChanged, n.handleTaskStatusChanged)
}

func (n *NotificationService) handlePortalContactInvited(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PortalContactInvitedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("PortalContactInvited", zap.String("contact_id", payload.ContactID))

	setupLink := fmt.Sprintf("%s/portal/setup?token=%s", strings.TrimRight(n.cfg.PortalURL, "/"), payload.SetupToken)
	n.sendEmailNotificationStub(ctx, payload.ContactEmail, setupLink)
	return nil
}

func (n *NotificationService) handlePortalAccountActivated(ctx context.Context, event events.Event) error {
	n.logger.Info("PortalAccountActivated", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserRoleAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRoleAssigned", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTaskStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TaskStatusChanged", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, recipient, link string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", recipient),
		zap.String("link", link))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
