package journaltx

import (
	"context"
	"time"

	"delivery-tracking/internal/domain"
)

// Repository is the journal repository as seen inside a transaction
type Repository interface {
	GetAssignment(ctx context.Context, jobID, userID string) (*domain.TrackedAssignment, error)
	OpenAssignment(ctx context.Context, a *domain.TrackedAssignment) error
	UpdateAssignmentStatus(ctx context.Context, jobID, userID string, status domain.AssignmentStatus) error
	CloseAssignment(ctx context.Context, jobID, userID string, status domain.AssignmentStatus, closedAt time.Time) error
	InsertEvent(ctx context.Context, e *domain.TrackingEvent) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
