package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/location"
	"delivery-tracking/internal/logx"
)

// Progress is the completion snapshot of one courier's assignment,
// derived from the latest authoritative backend payload.
type Progress struct {
	JobID            string
	UserID           string
	JobStatus        domain.JobStatus
	AssignmentStatus domain.AssignmentStatus
	Flags            domain.RequirementFlags
	// OTPCode is set only by SetRecipient; the backend generates it and
	// this service only surfaces it to the caller.
	OTPCode string
}

// CanMarkDelivered reports whether the four required flags are set.
func (p Progress) CanMarkDelivered() bool {
	return p.Flags.Complete()
}

// Tracker - usecase driving one assignment toward the delivered state.
// The five requirement steps are independent latches; each operation
// round-trips to the marketplace and re-derives the flags from the
// returned payload, so concurrent refreshes always reflect server state.
type Tracker struct {
	gw               marketplaceGateway
	locations        location.Provider
	journal          Journal
	logger           logx.Logger
	ops              *prometheus.CounterVec
	completed        prometheus.Counter
	operationTimeout time.Duration
	now              func() time.Time
	newBarcode       func() string
}

// NewTracker creates a Tracker.
func NewTracker(
	gw marketplaceGateway,
	locations location.Provider,
	journal Journal,
	logger logx.Logger,
	ops *prometheus.CounterVec,
	completed prometheus.Counter,
	timeout time.Duration,
) *Tracker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Tracker{
		gw:               gw,
		locations:        locations,
		journal:          journal,
		logger:           logger,
		ops:              ops,
		completed:        completed,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
		newBarcode:       func() string { return "BC-" + uuid.NewString() },
	}
}

func (t *Tracker) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.operationTimeout)
}

// Progress fetches the job and derives the caller's completion snapshot.
func (t *Tracker) Progress(ctx context.Context, jobID, userID string) (Progress, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	job, a, err := t.loadAssignment(ctx, jobID, userID)
	if err != nil {
		return Progress{}, err
	}
	return Progress{
		JobID:            job.ID,
		UserID:           userID,
		JobStatus:        job.Status,
		AssignmentStatus: a.Status,
		Flags:            domain.DeriveRequirements(a.Details),
	}, nil
}

// UpdateLocation reports the courier's position. Explicit coordinates
// win; otherwise the configured provider supplies them. Provider
// failures surface without touching the backend and leave the flag
// unset — the caller may simply try again.
func (t *Tracker) UpdateLocation(ctx context.Context, jobID, userID string, pt *domain.GeoPoint) (Progress, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	if _, err := t.loadMutable(ctx, jobID, userID, OpUpdateLocation); err != nil {
		return Progress{}, err
	}

	point, err := t.resolvePoint(ctx, pt)
	if err != nil {
		t.countOp(OpUpdateLocation, "error")
		return Progress{}, err
	}

	job, err := t.gw.UpdateLocation(ctx, jobID, userID, point)
	if err != nil {
		t.countOp(OpUpdateLocation, "error")
		return Progress{}, err
	}

	p, err := t.finish(ctx, OpUpdateLocation, job, userID)
	if err != nil {
		return Progress{}, err
	}
	t.logger.Info("location updated",
		logx.String("job_id", jobID),
		logx.String("user_id", userID),
		logx.Float64("lat", point.Lat),
		logx.Float64("lng", point.Lng),
		logx.String("job_status", string(p.JobStatus)),
	)
	return p, nil
}

// UploadDeliveryImage transmits a proof image. withBarcode=false feeds
// the required product-image flag; withBarcode=true only prepares the
// optional barcode step and never sets its flag by itself.
func (t *Tracker) UploadDeliveryImage(ctx context.Context, jobID, userID string, image []byte, filename string, withBarcode bool) (Progress, error) {
	if len(image) == 0 {
		return Progress{}, fmt.Errorf("empty image: %w", apperr.ErrValidation)
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	if _, err := t.loadMutable(ctx, jobID, userID, OpUploadImage); err != nil {
		return Progress{}, err
	}

	job, err := t.gw.UploadDeliveryImage(ctx, jobID, userID, image, filename, withBarcode)
	if err != nil {
		t.countOp(OpUploadImage, "error")
		return Progress{}, err
	}

	p, err := t.finish(ctx, OpUploadImage, job, userID)
	if err != nil {
		return Progress{}, err
	}
	t.logger.Info("delivery image uploaded",
		logx.String("job_id", jobID),
		logx.String("user_id", userID),
		logx.Bool("with_barcode", withBarcode),
	)
	return p, nil
}

// SetRecipient registers the recipient mobile number. The number is
// validated locally before any network call; once set it is read-only
// in this flow. The backend-generated OTP is surfaced in the result.
func (t *Tracker) SetRecipient(ctx context.Context, jobID, userID, mobile string) (Progress, error) {
	if !domain.ValidateMobile(mobile) {
		return Progress{}, fmt.Errorf("recipient mobile must be exactly 10 digits: %w", apperr.ErrValidation)
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	a, err := t.loadMutable(ctx, jobID, userID, OpSetRecipient)
	if err != nil {
		return Progress{}, err
	}
	if a.Details.RecipientMobile != "" {
		return Progress{}, fmt.Errorf("recipient already set: %w", apperr.ErrConflict)
	}

	job, otp, err := t.gw.SetRecipient(ctx, jobID, userID, mobile)
	if err != nil {
		t.countOp(OpSetRecipient, "error")
		return Progress{}, err
	}

	p, err := t.finish(ctx, OpSetRecipient, job, userID)
	if err != nil {
		return Progress{}, err
	}
	p.OTPCode = otp
	t.logger.Info("recipient set",
		logx.String("job_id", jobID),
		logx.String("user_id", userID),
	)
	return p, nil
}

// VerifyOTP submits the confirmation code. A mismatch is reported to
// the caller and leaves the flag unset; no retry limit is enforced here.
func (t *Tracker) VerifyOTP(ctx context.Context, jobID, userID, code string) (Progress, error) {
	if !domain.ValidateOTP(code) {
		return Progress{}, fmt.Errorf("confirmation code must be exactly 6 digits: %w", apperr.ErrValidation)
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	if _, err := t.loadMutable(ctx, jobID, userID, OpVerifyOTP); err != nil {
		return Progress{}, err
	}

	job, err := t.gw.VerifyOTP(ctx, jobID, userID, code)
	if err != nil {
		t.countOp(OpVerifyOTP, "error")
		return Progress{}, err
	}

	p, err := t.finish(ctx, OpVerifyOTP, job, userID)
	if err != nil {
		return Progress{}, err
	}
	t.logger.Info("otp verified",
		logx.String("job_id", jobID),
		logx.String("user_id", userID),
	)
	return p, nil
}

// MarkBarcodeScanned records the optional barcode confirmation. When no
// scan data is supplied a synthetic placeholder is generated.
func (t *Tracker) MarkBarcodeScanned(ctx context.Context, jobID, userID, data string) (Progress, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	if _, err := t.loadMutable(ctx, jobID, userID, OpBarcodeScanned); err != nil {
		return Progress{}, err
	}

	if data == "" {
		data = t.newBarcode()
	}

	job, err := t.gw.MarkBarcodeScanned(ctx, jobID, userID, data)
	if err != nil {
		t.countOp(OpBarcodeScanned, "error")
		return Progress{}, err
	}

	p, err := t.finish(ctx, OpBarcodeScanned, job, userID)
	if err != nil {
		return Progress{}, err
	}
	t.logger.Info("barcode scanned",
		logx.String("job_id", jobID),
		logx.String("user_id", userID),
	)
	return p, nil
}

// MarkDelivered issues the terminal transition. The precondition is
// checked here against freshly derived flags: all four required flags
// must be set (barcode excluded). On violation the backend is not
// contacted and the unmet flags are itemized.
func (t *Tracker) MarkDelivered(ctx context.Context, jobID, userID string) (Progress, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	a, err := t.loadMutable(ctx, jobID, userID, OpMarkDelivered)
	if err != nil {
		return Progress{}, err
	}

	flags := domain.DeriveRequirements(a.Details)
	if !flags.Complete() {
		t.countOp(OpMarkDelivered, "precondition_failed")
		return Progress{}, &apperr.PreconditionError{Missing: flags.Missing()}
	}

	job, err := t.gw.UpdateDeliveryStatus(ctx, jobID, userID, domain.AssignmentDelivered)
	if err != nil {
		t.countOp(OpMarkDelivered, "error")
		return Progress{}, err
	}

	p, err := t.finish(ctx, OpMarkDelivered, job, userID)
	if err != nil {
		return Progress{}, err
	}
	if t.completed != nil {
		t.completed.Inc()
	}
	t.logger.Info("delivery completed",
		logx.String("event", "delivery_completed"),
		logx.String("job_id", jobID),
		logx.String("user_id", userID),
		logx.Bool("barcode_scanned", p.Flags.BarcodeScanned),
	)
	return p, nil
}

// loadAssignment fetches the job and locates the caller's assignment.
func (t *Tracker) loadAssignment(ctx context.Context, jobID, userID string) (*domain.DeliveryJob, *domain.DeliveryAssignment, error) {
	job, err := t.gw.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	a := job.AssignmentFor(userID)
	if a == nil {
		return nil, nil, fmt.Errorf("no assignment for user %s on job %s: %w", userID, jobID, apperr.ErrNotFound)
	}
	return job, a, nil
}

// loadMutable is loadAssignment plus the terminal-state guard applied
// before every mutation: delivered and cancelled assignments accept no
// further operations from this service.
func (t *Tracker) loadMutable(ctx context.Context, jobID, userID, op string) (*domain.DeliveryAssignment, error) {
	_, a, err := t.loadAssignment(ctx, jobID, userID)
	if err != nil {
		t.countOp(op, "error")
		return nil, err
	}
	if a.Status.Terminal() {
		t.countOp(op, "rejected_terminal")
		return nil, fmt.Errorf("assignment is %s: %w", a.Status, apperr.ErrTerminalState)
	}
	return a, nil
}

// finish derives the result snapshot from the mutation's authoritative
// response and journals the event. Journal failures are logged, never
// propagated: the source of truth already moved on the backend.
func (t *Tracker) finish(ctx context.Context, op string, job *domain.DeliveryJob, userID string) (Progress, error) {
	a := job.AssignmentFor(userID)
	if a == nil {
		t.countOp(op, "error")
		return Progress{}, fmt.Errorf("assignment missing from response for user %s: %w", userID, apperr.ErrNotFound)
	}

	p := Progress{
		JobID:            job.ID,
		UserID:           userID,
		JobStatus:        job.Status,
		AssignmentStatus: a.Status,
		Flags:            domain.DeriveRequirements(a.Details),
	}

	if t.journal != nil {
		e := Event{
			JobID:      job.ID,
			UserID:     userID,
			Operation:  op,
			Status:     a.Status,
			Flags:      p.Flags,
			OccurredAt: t.now(),
		}
		if err := t.journal.Record(ctx, e); err != nil && !errors.Is(err, context.Canceled) {
			t.logger.Warn("journal record failed",
				logx.String("job_id", job.ID),
				logx.String("operation", op),
				logx.Any("err", err),
			)
		}
	}

	t.countOp(op, "success")
	return p, nil
}

func (t *Tracker) resolvePoint(ctx context.Context, pt *domain.GeoPoint) (domain.GeoPoint, error) {
	if pt != nil {
		p := *pt
		if p.Timestamp.IsZero() {
			p.Timestamp = t.now()
		}
		return p, nil
	}
	if t.locations == nil {
		return domain.GeoPoint{}, apperr.ErrLocationUnavailable
	}
	p, err := t.locations.Current(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrLocationPermissionDenied) || errors.Is(err, apperr.ErrLocationUnavailable) {
			return domain.GeoPoint{}, err
		}
		return domain.GeoPoint{}, fmt.Errorf("%w: %s", apperr.ErrLocationUnavailable, err)
	}
	return p, nil
}

func (t *Tracker) countOp(op, outcome string) {
	if t.ops != nil {
		t.ops.WithLabelValues(op, outcome).Inc()
	}
}
