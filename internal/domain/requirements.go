package domain

// RequirementFlags is the derived per-assignment completion state.
// Each flag is a latch: it reflects presence of the corresponding
// DeliveryDetails field in the latest backend payload and is never
// stored locally as a source of truth.
type RequirementFlags struct {
	LocationUpdated      bool
	ProductImageUploaded bool
	RecipientSet         bool
	OTPVerified          bool
	BarcodeScanned       bool
}

// Names of the required flags, used when itemizing unmet preconditions.
const (
	FlagLocationUpdated      = "locationUpdated"
	FlagProductImageUploaded = "productImageUploaded"
	FlagRecipientSet         = "recipientSet"
	FlagOTPVerified          = "otpVerified"
)

// DeriveRequirements projects backend-owned delivery details onto the
// requirement flags. It is a pure function of its input: the five
// checks are independent presence tests with no ordering between them.
func DeriveRequirements(d DeliveryDetails) RequirementFlags {
	return RequirementFlags{
		LocationUpdated:      d.CurrentLocation != nil,
		ProductImageUploaded: d.DeliveryImage != "",
		RecipientSet:         d.RecipientMobile != "",
		OTPVerified:          d.OTPVerified,
		BarcodeScanned:       d.BarcodeScanned,
	}
}

// Complete reports whether the delivery may be marked delivered.
// BarcodeScanned is optional and never blocks the transition.
func (f RequirementFlags) Complete() bool {
	return f.LocationUpdated && f.ProductImageUploaded && f.RecipientSet && f.OTPVerified
}

// Missing lists the required flags that are still unset.
func (f RequirementFlags) Missing() []string {
	var missing []string
	if !f.LocationUpdated {
		missing = append(missing, FlagLocationUpdated)
	}
	if !f.ProductImageUploaded {
		missing = append(missing, FlagProductImageUploaded)
	}
	if !f.RecipientSet {
		missing = append(missing, FlagRecipientSet)
	}
	if !f.OTPVerified {
		missing = append(missing, FlagOTPVerified)
	}
	return missing
}
