package assignments

import (
	"context"
	"strings"

	"delivery-tracking/internal/domain"
)

type actionFunc func(context.Context, Event, domain.AssignmentStatus) error

type actionFactory struct {
	byStatus map[string]action
}

type action struct {
	fn     actionFunc
	status domain.AssignmentStatus
}

func newActionFactory(onAccepted, onProgress, onClosed actionFunc) *actionFactory {
	return &actionFactory{
		byStatus: map[string]action{
			"accepted":   {fn: onAccepted, status: domain.AssignmentAccepted},
			"in-transit": {fn: onProgress, status: domain.AssignmentInTransit},
			"delivered":  {fn: onClosed, status: domain.AssignmentDelivered},
			"cancelled":  {fn: onClosed, status: domain.AssignmentCancelled},
			// the marketplace spells this both ways
			"canceled": {fn: onClosed, status: domain.AssignmentCancelled},
		},
	}
}

func (f *actionFactory) get(status string) (action, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	a, ok := f.byStatus[status]
	return a, ok
}
