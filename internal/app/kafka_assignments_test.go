package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/ports/journaltx"
	"delivery-tracking/internal/service/assignments"
	"delivery-tracking/internal/transport/kafka"
)

type stubTxRunner struct{ err error }

func (s stubTxRunner) WithTx(context.Context, func(tx journaltx.Repository) error) error {
	return s.err
}

func validEvent() assignments.Event {
	return assignments.Event{
		JobID:      "job-1",
		UserID:     "user-1",
		Status:     "accepted",
		OccurredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMakeAssignmentsKafka_Success(t *testing.T) {
	t.Parallel()

	p := assignments.NewProcessor(stubTxRunner{}, logx.Nop())
	h := makeAssignmentsKafka(p)

	require.NoError(t, h(context.Background(), validEvent()))
}

func TestMakeAssignmentsKafka_ValidationError_IsPermanent(t *testing.T) {
	t.Parallel()

	p := assignments.NewProcessor(stubTxRunner{}, logx.Nop())
	h := makeAssignmentsKafka(p)

	ev := validEvent()
	ev.JobID = ""

	err := h(context.Background(), ev)
	require.Error(t, err)
	require.ErrorIs(t, err, apperr.ErrValidation)

	var perm kafka.PermanentError
	require.ErrorAs(t, err, &perm)
}

func TestMakeAssignmentsKafka_TransientError_PassesThrough(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("db down")
	p := assignments.NewProcessor(stubTxRunner{err: sentinel}, logx.Nop())
	h := makeAssignmentsKafka(p)

	err := h(context.Background(), validEvent())
	require.ErrorIs(t, err, sentinel)

	var perm kafka.PermanentError
	require.False(t, errors.As(err, &perm))
}
