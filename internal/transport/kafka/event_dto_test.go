package kafka_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"delivery-tracking/internal/service/assignments"
	"delivery-tracking/internal/transport/kafka"
)

func TestToDomain_TrimsAndCopiesFields(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	dto := kafka.EventDTO{
		JobID:      "  job-1  ",
		UserID:     "  user-1  ",
		Status:     "  accepted  ",
		OccurredAt: ts,
	}

	got := kafka.ToDomain(dto)

	require.Equal(t, assignments.Event{
		JobID:      "job-1",
		UserID:     "user-1",
		Status:     "accepted",
		OccurredAt: ts,
	}, got)
}
