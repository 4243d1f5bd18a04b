package marketplace

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
)

type gateway interface {
	GetJob(ctx context.Context, jobID string) (*domain.DeliveryJob, error)
	UpdateLocation(ctx context.Context, jobID, userID string, pt domain.GeoPoint) (*domain.DeliveryJob, error)
	UploadDeliveryImage(ctx context.Context, jobID, userID string, image []byte, filename string, withBarcode bool) (*domain.DeliveryJob, error)
	SetRecipient(ctx context.Context, jobID, userID, mobile string) (*domain.DeliveryJob, string, error)
	VerifyOTP(ctx context.Context, jobID, userID, code string) (*domain.DeliveryJob, error)
	MarkBarcodeScanned(ctx context.Context, jobID, userID, data string) (*domain.DeliveryJob, error)
	UpdateDeliveryStatus(ctx context.Context, jobID, userID string, status domain.AssignmentStatus) (*domain.DeliveryJob, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes retry behaviour of the RetryingGateway.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway decorates a marketplace gateway with capped
// exponential backoff on transport failures and retryable statuses.
// Every backend mutation touches a single deliveryDetails field, so
// repeating a PATCH is safe.
type RetryingGateway struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingGateway wraps next with retry behaviour; nil next yields nil.
func NewRetryingGateway(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg}
}

// GetJob fetches a delivery job, retrying on retryable failures.
func (g *RetryingGateway) GetJob(ctx context.Context, jobID string) (*domain.DeliveryJob, error) {
	return attempt(ctx, g, "GetJob", func() (*domain.DeliveryJob, error) {
		return g.next.GetJob(ctx, jobID)
	})
}

// UpdateLocation reports a position, retrying on retryable failures.
func (g *RetryingGateway) UpdateLocation(ctx context.Context, jobID, userID string, pt domain.GeoPoint) (*domain.DeliveryJob, error) {
	return attempt(ctx, g, "UpdateLocation", func() (*domain.DeliveryJob, error) {
		return g.next.UpdateLocation(ctx, jobID, userID, pt)
	})
}

// UploadDeliveryImage uploads a proof image, retrying on retryable failures.
func (g *RetryingGateway) UploadDeliveryImage(ctx context.Context, jobID, userID string, image []byte, filename string, withBarcode bool) (*domain.DeliveryJob, error) {
	return attempt(ctx, g, "UploadDeliveryImage", func() (*domain.DeliveryJob, error) {
		return g.next.UploadDeliveryImage(ctx, jobID, userID, image, filename, withBarcode)
	})
}

// SetRecipient registers the recipient, retrying on retryable failures.
func (g *RetryingGateway) SetRecipient(ctx context.Context, jobID, userID, mobile string) (*domain.DeliveryJob, string, error) {
	type out struct {
		job *domain.DeliveryJob
		otp string
	}
	res, err := attempt(ctx, g, "SetRecipient", func() (out, error) {
		job, otp, err := g.next.SetRecipient(ctx, jobID, userID, mobile)
		return out{job: job, otp: otp}, err
	})
	return res.job, res.otp, err
}

// VerifyOTP submits the confirmation code, retrying on retryable failures.
func (g *RetryingGateway) VerifyOTP(ctx context.Context, jobID, userID, code string) (*domain.DeliveryJob, error) {
	return attempt(ctx, g, "VerifyOTP", func() (*domain.DeliveryJob, error) {
		return g.next.VerifyOTP(ctx, jobID, userID, code)
	})
}

// MarkBarcodeScanned records the barcode step, retrying on retryable failures.
func (g *RetryingGateway) MarkBarcodeScanned(ctx context.Context, jobID, userID, data string) (*domain.DeliveryJob, error) {
	return attempt(ctx, g, "MarkBarcodeScanned", func() (*domain.DeliveryJob, error) {
		return g.next.MarkBarcodeScanned(ctx, jobID, userID, data)
	})
}

// UpdateDeliveryStatus issues the status transition, retrying on retryable failures.
func (g *RetryingGateway) UpdateDeliveryStatus(ctx context.Context, jobID, userID string, status domain.AssignmentStatus) (*domain.DeliveryJob, error) {
	return attempt(ctx, g, "UpdateDeliveryStatus", func() (*domain.DeliveryJob, error) {
		return g.next.UpdateDeliveryStatus(ctx, jobID, userID, status)
	})
}

func attempt[T any](ctx context.Context, g *RetryingGateway, method string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for i := 1; i <= g.cfg.MaxAttempts; i++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err

		if ctx.Err() != nil || i == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, i)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("marketplace gateway retry",
			logx.String("method", method),
			logx.Int("attempt", i),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return zero, lastErr
}

// isRetryable treats transport-level failures and throttling or server
// errors as retryable; everything else (validation, conflicts, 4xx) is
// returned to the caller immediately.
func isRetryable(err error) bool {
	var be *apperr.BackendError
	if errors.As(err, &be) {
		return be.StatusCode == 429 || be.StatusCode >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// backoff computes the retry delay for a given attempt.
func backoff(base, max time.Duration, i int) time.Duration {
	d := base << (i - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
