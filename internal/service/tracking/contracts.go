package tracking

import (
	"context"
	"time"

	"delivery-tracking/internal/domain"
)

// marketplaceGateway is the slice of the marketplace backend this
// usecase consumes. Every mutation returns the authoritative job
// payload the requirement flags are re-derived from.
type marketplaceGateway interface {
	GetJob(ctx context.Context, jobID string) (*domain.DeliveryJob, error)
	UpdateLocation(ctx context.Context, jobID, userID string, pt domain.GeoPoint) (*domain.DeliveryJob, error)
	UploadDeliveryImage(ctx context.Context, jobID, userID string, image []byte, filename string, withBarcode bool) (*domain.DeliveryJob, error)
	SetRecipient(ctx context.Context, jobID, userID, mobile string) (*domain.DeliveryJob, string, error)
	VerifyOTP(ctx context.Context, jobID, userID, code string) (*domain.DeliveryJob, error)
	MarkBarcodeScanned(ctx context.Context, jobID, userID, data string) (*domain.DeliveryJob, error)
	UpdateDeliveryStatus(ctx context.Context, jobID, userID string, status domain.AssignmentStatus) (*domain.DeliveryJob, error)
}

// Event is one journal entry describing a successful tracking operation.
type Event struct {
	JobID      string
	UserID     string
	Operation  string
	Status     domain.AssignmentStatus
	Flags      domain.RequirementFlags
	OccurredAt time.Time
}

// Journal persists the progress history. Journal failures never fail
// the operation that produced the event.
type Journal interface {
	Record(ctx context.Context, e Event) error
}

// Operation names as recorded in the journal and metrics.
const (
	OpUpdateLocation = "update_location"
	OpUploadImage    = "upload_image"
	OpSetRecipient   = "set_recipient"
	OpVerifyOTP      = "verify_otp"
	OpBarcodeScanned = "barcode_scanned"
	OpMarkDelivered  = "mark_delivered"
)
