package handlers

type flagsResponse struct {
	LocationUpdated      bool `json:"locationUpdated"`
	ProductImageUploaded bool `json:"productImageUploaded"`
	RecipientSet         bool `json:"recipientSet"`
	OTPVerified          bool `json:"otpVerified"`
	BarcodeScanned       bool `json:"barcodeScanned"`
}

type progressResponse struct {
	JobID            string        `json:"jobId"`
	UserID           string        `json:"userId"`
	JobStatus        string        `json:"jobStatus"`
	DeliveryStatus   string        `json:"deliveryStatus"`
	Flags            flagsResponse `json:"flags"`
	CanMarkDelivered bool          `json:"canMarkDelivered"`
	OTPCode          string        `json:"otpCode,omitempty"`
}

type updateLocationRequest struct {
	UserID string   `json:"userId"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

type setRecipientRequest struct {
	UserID       string `json:"userId"`
	MobileNumber string `json:"mobileNumber"`
}

type verifyOTPRequest struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
}

type barcodeRequest struct {
	UserID      string `json:"userId"`
	BarcodeData string `json:"barcodeData"`
}

type markDeliveredRequest struct {
	UserID string `json:"userId"`
}
