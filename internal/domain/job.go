package domain

import "time"

// GeoPoint is a single reported courier position.
type GeoPoint struct {
	Lat       float64
	Lng       float64
	Timestamp time.Time
}

// DeliveryDetails is the per-assignment progress record the marketplace
// backend maintains. Every field is owned by the backend; this service
// only reads them back and derives requirement flags.
type DeliveryDetails struct {
	CurrentLocation          *GeoPoint
	DeliveryImage            string
	DeliveryImageWithBarcode string
	RecipientMobile          string
	OTPCode                  string
	OTPVerified              bool
	BarcodeScanned           bool
	BarcodeData              string
	DeliveredAt              *time.Time
}

// DeliveryAssignment is one courier's assignment on a delivery job.
type DeliveryAssignment struct {
	UserID  string
	Status  AssignmentStatus
	Details DeliveryDetails
}

// DeliveryJob is one deliverable unit (a product or an order) together
// with the assignments of the couriers who accepted it.
type DeliveryJob struct {
	ID          string
	Title       string
	Status      JobStatus
	CreatorID   string
	Assignments []DeliveryAssignment
}

// AssignmentFor returns the assignment owned by userID, or nil.
func (j *DeliveryJob) AssignmentFor(userID string) *DeliveryAssignment {
	if j == nil {
		return nil
	}
	for i := range j.Assignments {
		if j.Assignments[i].UserID == userID {
			return &j.Assignments[i]
		}
	}
	return nil
}
