package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"delivery-tracking/internal/http/handlers"
	mw "delivery-tracking/internal/http/middleware"
	"delivery-tracking/internal/http/middleware/ratelimit"
	"delivery-tracking/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
func New(logger logx.Logger, base *handlers.Handlers, tracking *handlers.TrackingHandler, limiter *ratelimit.Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(mw.Observability(logger))
	if limiter != nil {
		r.Use(limiter.Handler())
	}

	r.Get("/ping", base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(base.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/jobs/{jobID}/tracking", func(r chi.Router) {
		r.Get("/", tracking.Progress)
		r.Post("/location", tracking.UpdateLocation)
		r.Post("/image", tracking.UploadImage)
		r.Post("/recipient", tracking.SetRecipient)
		r.Post("/otp", tracking.VerifyOTP)
		r.Post("/barcode", tracking.MarkBarcode)
		r.Post("/delivered", tracking.MarkDelivered)
	})

	r.NotFound(http.HandlerFunc(base.NotFound))

	return r
}
