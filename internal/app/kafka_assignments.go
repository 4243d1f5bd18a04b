package app

import (
	"context"
	"errors"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/service/assignments"
	"delivery-tracking/internal/transport/kafka"
)

// makeAssignmentsKafka adapts the processor to the consumer. Malformed
// events can never succeed on redelivery, so validation failures are
// marked permanent and dropped.
func makeAssignmentsKafka(p *assignments.Processor) kafka.HandleFunc {
	return func(ctx context.Context, event assignments.Event) error {
		err := p.Handle(ctx, event)
		if err == nil {
			return nil
		}
		if errors.Is(err, apperr.ErrValidation) {
			return kafka.Permanent(err)
		}
		return err
	}
}
