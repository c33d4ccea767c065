package ports

import (
	"context"

	"github.com/newmedia/membership-api/internal/core/domain"
)

// EventService processes audit events off the request path.
type EventService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}

// EventRecorder accepts audit events without blocking the caller.
type EventRecorder interface {
	Record(event domain.AuthEvent)
}
