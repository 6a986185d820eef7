package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/credit-service/internal/events"
)

// AnalyticsRecorder receives lifecycle counters.
type AnalyticsRecorder interface {
	RecordCardEvent(event string)
	ObserveApprovedLimit(amount int64)
}

// AuditService logs domain events and feeds the analytics metrics.
type AuditService struct {
	dispatcher events.Dispatcher
	recorder   AnalyticsRecorder
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, recorder AnalyticsRecorder, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, recorder: recorder, logger: logger}
}

// RegisterHandlers subscribes to every event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.All {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.logger.Info("audit event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload))

	if a.recorder == nil {
		return nil
	}
	a.recorder.RecordCardEvent(string(event.Type))
	switch p := event.Payload.(type) {
	case events.CardOpenedPayload:
		a.recorder.ObserveApprovedLimit(p.Approved)
	case events.CardLimitIncreasedPayload:
		a.recorder.ObserveApprovedLimit(p.NewLimit)
	}
	return nil
}
