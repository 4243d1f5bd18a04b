package handlers

import (
	"context"

	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/service/tracking"
)

type trackingUsecase interface {
	Progress(ctx context.Context, jobID, userID string) (tracking.Progress, error)
	UpdateLocation(ctx context.Context, jobID, userID string, pt *domain.GeoPoint) (tracking.Progress, error)
	UploadDeliveryImage(ctx context.Context, jobID, userID string, image []byte, filename string, withBarcode bool) (tracking.Progress, error)
	SetRecipient(ctx context.Context, jobID, userID, mobile string) (tracking.Progress, error)
	VerifyOTP(ctx context.Context, jobID, userID, code string) (tracking.Progress, error)
	MarkBarcodeScanned(ctx context.Context, jobID, userID, data string) (tracking.Progress, error)
	MarkDelivered(ctx context.Context, jobID, userID string) (tracking.Progress, error)
}

// NewTrackingUsecase wires a Tracker into a trackingUsecase.
func NewTrackingUsecase(svc *tracking.Tracker) trackingUsecase {
	return svc
}
