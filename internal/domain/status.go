package domain

import "regexp"

type (
	// JobStatus represents the status of a delivery job.
	JobStatus string
	// AssignmentStatus represents the status of one courier's assignment.
	AssignmentStatus string
)

// List of possible job statuses
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusAccepted  JobStatus = "accepted"
	JobStatusInTransit JobStatus = "in-transit"
	JobStatusDelivered JobStatus = "delivered"
)

// List of possible assignment statuses
const (
	AssignmentAccepted  AssignmentStatus = "accepted"
	AssignmentInTransit AssignmentStatus = "in-transit"
	AssignmentDelivered AssignmentStatus = "delivered"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

var allowedJobStatuses = [...]JobStatus{
	JobStatusPending, JobStatusAccepted, JobStatusInTransit, JobStatusDelivered,
}

var allowedAssignmentStatuses = [...]AssignmentStatus{
	AssignmentAccepted, AssignmentInTransit, AssignmentDelivered, AssignmentCancelled,
}

// Valid checks if the JobStatus is valid
func (s JobStatus) Valid() bool {
	for _, v := range allowedJobStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the AssignmentStatus is valid
func (s AssignmentStatus) Valid() bool {
	for _, v := range allowedAssignmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the assignment reached a final state.
// Terminal assignments accept no further mutations from this service.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentDelivered || s == AssignmentCancelled
}

// reMobile matches a recipient mobile number: exactly 10 digits.
var reMobile = regexp.MustCompile(`^[0-9]{10}$`)

// reOTP matches a delivery confirmation code: exactly 6 digits.
var reOTP = regexp.MustCompile(`^[0-9]{6}$`)

// ValidateMobile validates the recipient mobile number format.
func ValidateMobile(s string) bool {
	return reMobile.MatchString(s)
}

// ValidateOTP validates the confirmation code format.
func ValidateOTP(s string) bool {
	return reOTP.MatchString(s)
}
