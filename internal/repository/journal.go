package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/ports/journaltx"
)

// JournalRepo persists the tracking journal.
type JournalRepo struct {
	db *pgxpool.Pool
}

// NewJournalRepo creates a new JournalRepo.
func NewJournalRepo(db *pgxpool.Pool) *JournalRepo {
	return &JournalRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *JournalRepo) WithTx(ctx context.Context, fn func(tx journaltx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// ListOpen returns tracked assignments that were never closed.
func (r *JournalRepo) ListOpen(ctx context.Context) ([]domain.TrackedAssignment, error) {
	rows, err := r.db.Query(ctx, `
        SELECT job_id, user_id, status, first_seen_at, updated_at, closed_at
        FROM tracked_assignments
        WHERE closed_at IS NULL
        ORDER BY first_seen_at ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("list open assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.TrackedAssignment
	for rows.Next() {
		var a domain.TrackedAssignment
		if err := rows.Scan(&a.JobID, &a.UserID, &a.Status, &a.FirstSeenAt, &a.UpdatedAt, &a.ClosedAt); err != nil {
			return nil, fmt.Errorf("scan tracked assignment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list open assignments: %w", err)
	}
	return out, nil
}

// TxRepo represents the journal repository inside a transaction.
type TxRepo struct {
	tx pgx.Tx
}

// GetAssignment - get a tracked assignment by job and user.
func (r *TxRepo) GetAssignment(ctx context.Context, jobID, userID string) (*domain.TrackedAssignment, error) {
	row := r.tx.QueryRow(ctx, `
        SELECT job_id, user_id, status, first_seen_at, updated_at, closed_at
        FROM tracked_assignments
        WHERE job_id = $1 AND user_id = $2
    `, jobID, userID)

	var a domain.TrackedAssignment
	if err := row.Scan(&a.JobID, &a.UserID, &a.Status, &a.FirstSeenAt, &a.UpdatedAt, &a.ClosedAt); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment %q/%q: %w", jobID, userID, err)
	}
	return &a, nil
}

// OpenAssignment - insert a new tracked assignment.
func (r *TxRepo) OpenAssignment(ctx context.Context, a *domain.TrackedAssignment) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO tracked_assignments (job_id, user_id, status, first_seen_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
    `, a.JobID, a.UserID, string(a.Status), a.FirstSeenAt)
	if err != nil {
		return fmt.Errorf("open assignment %q/%q: %w", a.JobID, a.UserID, err)
	}
	return nil
}

// UpdateAssignmentStatus - update the status of an open tracked assignment.
func (r *TxRepo) UpdateAssignmentStatus(ctx context.Context, jobID, userID string, status domain.AssignmentStatus) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE tracked_assignments
        SET status = $3, updated_at = now()
        WHERE job_id = $1 AND user_id = $2 AND closed_at IS NULL
    `, jobID, userID, string(status))
	if err != nil {
		return fmt.Errorf("update assignment status %q/%q: %w", jobID, userID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("assignment %q/%q not found: %w", jobID, userID, pgx.ErrNoRows)
	}
	return nil
}

// CloseAssignment - close a tracked assignment with its final status.
func (r *TxRepo) CloseAssignment(ctx context.Context, jobID, userID string, status domain.AssignmentStatus, closedAt time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE tracked_assignments
        SET status = $3, updated_at = now(), closed_at = $4
        WHERE job_id = $1 AND user_id = $2 AND closed_at IS NULL
    `, jobID, userID, string(status), closedAt)
	if err != nil {
		return fmt.Errorf("close assignment %q/%q: %w", jobID, userID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("assignment %q/%q not found: %w", jobID, userID, pgx.ErrNoRows)
	}
	return nil
}

// InsertEvent - insert a journaled tracking event.
func (r *TxRepo) InsertEvent(ctx context.Context, e *domain.TrackingEvent) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO tracking_events (
            job_id, user_id, operation, status,
            location_updated, product_image_uploaded, recipient_set, otp_verified, barcode_scanned,
            occurred_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `, e.JobID, e.UserID, e.Operation, string(e.Status),
		e.Flags.LocationUpdated, e.Flags.ProductImageUploaded, e.Flags.RecipientSet,
		e.Flags.OTPVerified, e.Flags.BarcodeScanned,
		e.OccurredAt).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert tracking event: %w", err)
	}
	return nil
}
