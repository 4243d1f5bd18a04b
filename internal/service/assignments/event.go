package assignments

import (
	"time"
)

// Event is a single assignment lifecycle event published by the
// marketplace.
type Event struct {
	JobID      string    `json:"job_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
