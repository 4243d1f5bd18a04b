package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-tracking/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal   prometheus.Counter `name:"rate_limit_exceeded_total"`
	GatewayRetriesTotal      prometheus.Counter `name:"gateway_retries_total"`
	DeliveriesCompletedTotal prometheus.Counter `name:"deliveries_completed_total"`
	TrackingOperationsTotal  *prometheus.CounterVec
}

// provideMetrics registers the service counters on the default registerer.
// A counter that is already registered (tests rebuild the container within
// one process) is reused instead of failing the build.
func provideMetrics() (metricsOut, error) {
	rl, err := registerCounter(metrics.NewRateLimitExceededTotal(), "rate_limit_exceeded_total")
	if err != nil {
		return metricsOut{}, err
	}
	gr, err := registerCounter(metrics.NewGatewayRetriesTotal(), "gateway_retries_total")
	if err != nil {
		return metricsOut{}, err
	}
	dc, err := registerCounter(metrics.NewDeliveriesCompletedTotal(), "deliveries_completed_total")
	if err != nil {
		return metricsOut{}, err
	}
	ops, err := registerCounterVec(metrics.NewTrackingOperationsTotal(), "tracking_operations_total")
	if err != nil {
		return metricsOut{}, err
	}
	return metricsOut{
		RateLimitExceededTotal:   rl,
		GatewayRetriesTotal:      gr,
		DeliveriesCompletedTotal: dc,
		TrackingOperationsTotal:  ops,
	}, nil
}

func registerCounter(c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := prometheus.DefaultRegisterer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}

func registerCounterVec(v *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := prometheus.DefaultRegisterer.Register(v); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return v, nil
}
