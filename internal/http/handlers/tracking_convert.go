package handlers

import "delivery-tracking/internal/service/tracking"

func progressToResponse(p tracking.Progress) progressResponse {
	return progressResponse{
		JobID:          p.JobID,
		UserID:         p.UserID,
		JobStatus:      string(p.JobStatus),
		DeliveryStatus: string(p.AssignmentStatus),
		Flags: flagsResponse{
			LocationUpdated:      p.Flags.LocationUpdated,
			ProductImageUploaded: p.Flags.ProductImageUploaded,
			RecipientSet:         p.Flags.RecipientSet,
			OTPVerified:          p.Flags.OTPVerified,
			BarcodeScanned:       p.Flags.BarcodeScanned,
		},
		CanMarkDelivered: p.CanMarkDelivered(),
		OTPCode:          p.OTPCode,
	}
}
