package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/newmedia/membership-api/internal/api/metrics"
	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/core/ports"
)

type eventService struct {
	repo ports.EventRepository
	log  zerolog.Logger
}

// NewEventService returns the consumer side of the audit trail.
func NewEventService(repo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{repo: repo, log: log}
}

// Process persists a single audit event.
func (s *eventService) Process(ctx context.Context, event domain.AuthEvent) error {
	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		metrics.AuthEventsProcessedTotal.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("process auth event: %w", err)
	}

	metrics.AuthEventsProcessedTotal.WithLabelValues(string(event.Type), "ok").Inc()
	s.log.Debug().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Str("user_id", event.UserID).
		Msg("auth event recorded")

	return nil
}
