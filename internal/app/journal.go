package app

import (
	"context"

	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/ports/journaltx"
	"delivery-tracking/internal/service/tracking"
)

type journalTxRunner interface {
	WithTx(ctx context.Context, fn func(tx journaltx.Repository) error) error
}

// journalRecorder writes tracker events into the journal and keeps the
// tracked_assignments row in step with the status the backend returned.
type journalRecorder struct {
	repo journalTxRunner
}

// NewJournalRecorder adapts the journal repository to the tracker's journal.
func NewJournalRecorder(repo journalTxRunner) tracking.Journal {
	return &journalRecorder{repo: repo}
}

func (j *journalRecorder) Record(ctx context.Context, e tracking.Event) error {
	return j.repo.WithTx(ctx, func(tx journaltx.Repository) error {
		cur, err := tx.GetAssignment(ctx, e.JobID, e.UserID)
		if err != nil {
			return err
		}

		switch {
		case cur == nil:
			err = tx.OpenAssignment(ctx, &domain.TrackedAssignment{
				JobID:       e.JobID,
				UserID:      e.UserID,
				Status:      e.Status,
				FirstSeenAt: e.OccurredAt,
				UpdatedAt:   e.OccurredAt,
			})
		case cur.ClosedAt != nil:
			// late event for a closed assignment: keep the event, leave the row
		case e.Status.Terminal():
			err = tx.CloseAssignment(ctx, e.JobID, e.UserID, e.Status, e.OccurredAt)
		default:
			err = tx.UpdateAssignmentStatus(ctx, e.JobID, e.UserID, e.Status)
		}
		if err != nil {
			return err
		}

		return tx.InsertEvent(ctx, &domain.TrackingEvent{
			JobID:      e.JobID,
			UserID:     e.UserID,
			Operation:  e.Operation,
			Status:     e.Status,
			Flags:      e.Flags,
			OccurredAt: e.OccurredAt,
		})
	})
}
