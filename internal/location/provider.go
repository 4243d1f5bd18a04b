// Package location abstracts position acquisition for couriers whose
// requests carry no explicit coordinates.
package location

import (
	"context"
	"time"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
)

// Provider reports a current position for the calling courier.
type Provider interface {
	Current(ctx context.Context) (domain.GeoPoint, error)
}

// Static is a Provider pinned to fixed coordinates (e.g. a depot),
// used as the fallback when the device sends none.
type Static struct {
	Lat float64
	Lng float64
	now func() time.Time
}

// NewStatic creates a Static provider.
func NewStatic(lat, lng float64) *Static {
	return &Static{Lat: lat, Lng: lng, now: func() time.Time { return time.Now().UTC() }}
}

// Current returns the configured position stamped with the current time.
// A zero-value position is treated as unconfigured and reported as
// unavailable rather than silently placing the courier at null island.
func (s *Static) Current(_ context.Context) (domain.GeoPoint, error) {
	if s.Lat == 0 && s.Lng == 0 {
		return domain.GeoPoint{}, apperr.ErrLocationUnavailable
	}
	return domain.GeoPoint{Lat: s.Lat, Lng: s.Lng, Timestamp: s.now()}, nil
}

// Func adapts a function to the Provider interface.
type Func func(ctx context.Context) (domain.GeoPoint, error)

// Current calls the wrapped function.
func (f Func) Current(ctx context.Context) (domain.GeoPoint, error) {
	return f(ctx)
}
