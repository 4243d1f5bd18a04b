package assignments

import (
	"context"

	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/ports/journaltx"
)

// TxRunner is a transaction runner over the journal repository.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx journaltx.Repository) error) error
}

// JobSource abstracts the subset of the marketplace gateway the
// reconciler needs to re-check an assignment's authoritative state.
type JobSource interface {
	GetJob(ctx context.Context, jobID string) (*domain.DeliveryJob, error)
}

// OpenLister lists tracked assignments that were never closed.
type OpenLister interface {
	ListOpen(ctx context.Context) ([]domain.TrackedAssignment, error)
}
