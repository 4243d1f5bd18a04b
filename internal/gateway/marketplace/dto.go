package marketplace

import (
	"time"

	"delivery-tracking/internal/domain"
)

// Wire shapes of the marketplace backend. Field names follow the
// backend's camelCase JSON contract.

type locationDTO struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

type detailsDTO struct {
	CurrentLocation          *locationDTO `json:"currentLocation,omitempty"`
	DeliveryImage            string       `json:"deliveryImage,omitempty"`
	DeliveryImageWithBarcode string       `json:"deliveryImageWithBarcode,omitempty"`
	RecipientMobile          string       `json:"recipientMobile,omitempty"`
	OTPCode                  string       `json:"otpCode,omitempty"`
	OTPVerified              bool         `json:"otpVerified"`
	BarcodeScanned           bool         `json:"barcodeScanned"`
	BarcodeData              string       `json:"barcodeData,omitempty"`
	DeliveredAt              *time.Time   `json:"deliveredAt,omitempty"`
}

type assignmentDTO struct {
	UserID          string     `json:"userId"`
	DeliveryStatus  string     `json:"deliveryStatus"`
	DeliveryDetails detailsDTO `json:"deliveryDetails"`
}

type jobDTO struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Status        string          `json:"status"`
	CreatedBy     string          `json:"createdBy"`
	AcceptedUsers []assignmentDTO `json:"acceptedUsers"`
}

// jobEnvelope is the common response shape of the job endpoints.
// set-recipient additionally carries the server-generated otpCode as a
// sibling of the job fields.
type jobEnvelope struct {
	jobDTO
	OTPCode string `json:"otpCode,omitempty"`
}

type errorDTO struct {
	Message string `json:"message"`
}

type updateLocationRequest struct {
	UserID string  `json:"userId"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

type setRecipientRequest struct {
	UserID          string `json:"userId"`
	RecipientMobile string `json:"recipientMobile"`
}

type verifyOTPRequest struct {
	UserID  string `json:"userId"`
	OTPCode string `json:"otpCode"`
}

type markBarcodeScannedRequest struct {
	UserID      string `json:"userId"`
	BarcodeData string `json:"barcodeData"`
}

type updateDeliveryStatusRequest struct {
	UserID         string `json:"userId"`
	DeliveryStatus string `json:"deliveryStatus"`
}

func mapLocation(l *locationDTO) *domain.GeoPoint {
	if l == nil {
		return nil
	}
	return &domain.GeoPoint{Lat: l.Lat, Lng: l.Lng, Timestamp: l.Timestamp}
}

func mapAssignment(a assignmentDTO) domain.DeliveryAssignment {
	return domain.DeliveryAssignment{
		UserID: a.UserID,
		Status: domain.AssignmentStatus(a.DeliveryStatus),
		Details: domain.DeliveryDetails{
			CurrentLocation:          mapLocation(a.DeliveryDetails.CurrentLocation),
			DeliveryImage:            a.DeliveryDetails.DeliveryImage,
			DeliveryImageWithBarcode: a.DeliveryDetails.DeliveryImageWithBarcode,
			RecipientMobile:          a.DeliveryDetails.RecipientMobile,
			OTPCode:                  a.DeliveryDetails.OTPCode,
			OTPVerified:              a.DeliveryDetails.OTPVerified,
			BarcodeScanned:           a.DeliveryDetails.BarcodeScanned,
			BarcodeData:              a.DeliveryDetails.BarcodeData,
			DeliveredAt:              a.DeliveryDetails.DeliveredAt,
		},
	}
}

func mapJob(j jobDTO) *domain.DeliveryJob {
	job := &domain.DeliveryJob{
		ID:        j.ID,
		Title:     j.Title,
		Status:    domain.JobStatus(j.Status),
		CreatorID: j.CreatedBy,
	}
	if len(j.AcceptedUsers) > 0 {
		job.Assignments = make([]domain.DeliveryAssignment, 0, len(j.AcceptedUsers))
		for _, a := range j.AcceptedUsers {
			job.Assignments = append(job.Assignments, mapAssignment(a))
		}
	}
	return job
}
