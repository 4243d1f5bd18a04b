package assignments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/ports/journaltx"
	"delivery-tracking/internal/repository"
)

// Processor applies assignment lifecycle events to the local journal.
// Events are at-least-once: re-deliveries of opens and closes must be
// no-ops.
type Processor struct {
	repo    TxRunner
	logger  logx.Logger
	now     func() time.Time
	factory *actionFactory
}

// NewProcessor creates a new assignments.Processor.
func NewProcessor(repo TxRunner, logger logx.Logger) *Processor {
	p := &Processor{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	p.factory = newActionFactory(p.onAccepted, p.onProgress, p.onClosed)
	return p
}

// Handle processes a single assignment event.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	if strings.TrimSpace(e.JobID) == "" || strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("assignment event without job_id/user_id: %w", apperr.ErrValidation)
	}
	a, ok := p.factory.get(e.Status)
	if !ok {
		return nil
	}
	return a.fn(ctx, e, a.status)
}

func (p *Processor) eventTime(e Event) time.Time {
	if e.OccurredAt.IsZero() {
		return p.now()
	}
	return e.OccurredAt
}

func (p *Processor) onAccepted(ctx context.Context, e Event, status domain.AssignmentStatus) error {
	err := p.repo.WithTx(ctx, func(tx journaltx.Repository) error {
		existing, err := tx.GetAssignment(ctx, e.JobID, e.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		return tx.OpenAssignment(ctx, &domain.TrackedAssignment{
			JobID:       e.JobID,
			UserID:      e.UserID,
			Status:      status,
			FirstSeenAt: p.eventTime(e),
		})
	})
	if repository.IsDuplicate(err) {
		// concurrent consumer already opened it
		return nil
	}
	return err
}

func (p *Processor) onProgress(ctx context.Context, e Event, status domain.AssignmentStatus) error {
	return p.repo.WithTx(ctx, func(tx journaltx.Repository) error {
		existing, err := tx.GetAssignment(ctx, e.JobID, e.UserID)
		if err != nil {
			return err
		}
		if existing == nil {
			// progress event arrived before the accept; open directly
			return tx.OpenAssignment(ctx, &domain.TrackedAssignment{
				JobID:       e.JobID,
				UserID:      e.UserID,
				Status:      status,
				FirstSeenAt: p.eventTime(e),
			})
		}
		if existing.ClosedAt != nil {
			return nil
		}
		return tx.UpdateAssignmentStatus(ctx, e.JobID, e.UserID, status)
	})
}

func (p *Processor) onClosed(ctx context.Context, e Event, status domain.AssignmentStatus) error {
	return p.repo.WithTx(ctx, func(tx journaltx.Repository) error {
		existing, err := tx.GetAssignment(ctx, e.JobID, e.UserID)
		if err != nil {
			return err
		}
		if existing == nil || existing.ClosedAt != nil {
			return nil
		}
		if err := tx.CloseAssignment(ctx, e.JobID, e.UserID, status, p.eventTime(e)); err != nil {
			return err
		}
		p.logger.Info("tracked assignment closed",
			logx.String("job_id", e.JobID),
			logx.String("user_id", e.UserID),
			logx.String("status", string(status)),
		)
		return nil
	})
}
