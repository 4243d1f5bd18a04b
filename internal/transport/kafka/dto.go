package kafka

import (
	"strings"
	"time"

	"delivery-tracking/internal/service/assignments"
)

// EventDTO is a data transfer object for assignments.Event
type EventDTO struct {
	JobID      string    `json:"job_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToDomain converts EventDTO to assignments.Event
func ToDomain(dto EventDTO) assignments.Event {
	return assignments.Event{
		JobID:      strings.TrimSpace(dto.JobID),
		UserID:     strings.TrimSpace(dto.UserID),
		Status:     strings.TrimSpace(dto.Status),
		OccurredAt: dto.OccurredAt,
	}
}
