package domain

import "time"

// TrackedAssignment is the local journal row mirroring one courier's
// assignment. It exists for reporting only; the marketplace backend
// stays the source of truth for the assignment itself.
type TrackedAssignment struct {
	JobID       string
	UserID      string
	Status      AssignmentStatus
	FirstSeenAt time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// TrackingEvent is one journaled tracking operation with the flag
// snapshot derived at the time it succeeded.
type TrackingEvent struct {
	ID         int64
	JobID      string
	UserID     string
	Operation  string
	Status     AssignmentStatus
	Flags      RequirementFlags
	OccurredAt time.Time
}
