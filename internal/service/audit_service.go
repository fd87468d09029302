package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/cook-api/internal/events"
)

// AuditService writes security-relevant events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleInfo)
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleInfo)
	a.dispatcher.Subscribe(events.EventTokenRefreshed, a.handleInfo)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventRecipeChanged, a.handleResourceChanged)
	a.dispatcher.Subscribe(events.EventReviewChanged, a.handleResourceChanged)
}

func (a *AuditService) handleInfo(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("user_id", event.Actor.UserID),
		zap.String("username", event.Actor.Username))
	return nil
}

// handleLoginFailed logs at warn; the username is whatever the caller typed.
func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	a.logger.Warn(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("username", event.Actor.Username))
	return nil
}

func (a *AuditService) handleResourceChanged(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("user_id", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	return nil
}
