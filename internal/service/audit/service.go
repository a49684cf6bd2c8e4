package audit

import (
	"context"
	"encoding/json"

	"github.com/smilecare/booking-api/internal/model"
	"github.com/smilecare/booking-api/internal/repository"
	"github.com/smilecare/booking-api/pkg/logger"
)

// Service is the write-only audit sink: one system log row per action
// plus an outbox event published to the broker by the worker. Recording
// never fails the caller; a broken sink is logged and swallowed.
type Service struct {
	logs   repository.SystemLogRepository
	outbox repository.OutboxRepository
	logger *logger.Logger
}

func NewService(logs repository.SystemLogRepository, outbox repository.OutboxRepository, logger *logger.Logger) *Service {
	return &Service{
		logs:   logs,
		outbox: outbox,
		logger: logger,
	}
}

// Record writes an audit entry. details may be any JSON-serializable
// value describing the change.
func (s *Service) Record(ctx context.Context, userID *int64, category, action, message string, details interface{}) {
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			s.logger.Error(err, "failed to marshal audit context", "action", action)
		} else {
			raw = b
		}
	}

	entry := &model.SystemLog{
		UserID:   userID,
		Category: category,
		Action:   action,
		Message:  message,
		Context:  raw,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Error(err, "failed to write system log", "action", action)
		return
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error(err, "failed to marshal audit event", "action", action)
		return
	}
	event := &model.OutboxEvent{
		EventType: category + "." + action,
		Payload:   payload,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to stage audit event", "action", action)
	}
}
