package assignments

import (
	"context"
	"errors"
	"time"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/ports/journaltx"
)

// Reconciler sweeps open journal rows against the marketplace and
// closes the ones whose assignments already ended. It papers over
// missed or re-ordered lifecycle events.
type Reconciler struct {
	jobs   JobSource
	open   OpenLister
	repo   TxRunner
	logger logx.Logger
	now    func() time.Time
}

// NewReconciler creates a new Reconciler.
func NewReconciler(jobs JobSource, open OpenLister, repo TxRunner, logger logx.Logger) *Reconciler {
	return &Reconciler{
		jobs:   jobs,
		open:   open,
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Reconcile runs one sweep and returns how many rows were closed.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	rows, err := r.open.ListOpen(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return closed, ctx.Err()
		}
		didClose, err := r.reconcileOne(ctx, row)
		if err != nil {
			// keep sweeping, this row is retried next round
			r.logger.Warn("reconcile failed",
				logx.String("job_id", row.JobID),
				logx.String("user_id", row.UserID),
				logx.Any("err", err),
			)
			continue
		}
		if didClose {
			closed++
		}
	}
	return closed, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, row domain.TrackedAssignment) (bool, error) {
	job, err := r.jobs.GetJob(ctx, row.JobID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// the job is gone; the assignment cannot progress anymore
			return true, r.close(ctx, row, domain.AssignmentCancelled)
		}
		return false, err
	}

	a := job.AssignmentFor(row.UserID)
	if a == nil {
		return true, r.close(ctx, row, domain.AssignmentCancelled)
	}
	if a.Status.Terminal() {
		return true, r.close(ctx, row, a.Status)
	}
	if a.Status != row.Status {
		return false, r.repo.WithTx(ctx, func(tx journaltx.Repository) error {
			return tx.UpdateAssignmentStatus(ctx, row.JobID, row.UserID, a.Status)
		})
	}
	return false, nil
}

func (r *Reconciler) close(ctx context.Context, row domain.TrackedAssignment, status domain.AssignmentStatus) error {
	return r.repo.WithTx(ctx, func(tx journaltx.Repository) error {
		return tx.CloseAssignment(ctx, row.JobID, row.UserID, status, r.now())
	})
}
