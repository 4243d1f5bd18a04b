package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-tracking/internal/config"
	"delivery-tracking/internal/gateway/marketplace"
	"delivery-tracking/internal/http/handlers"
	"delivery-tracking/internal/http/pprofserver"
	"delivery-tracking/internal/http/router"
	"delivery-tracking/internal/location"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/repository"
	"delivery-tracking/internal/service/tracking"
)

// reconcileInterval is how often the worker re-checks open assignments
// against the marketplace.
type reconcileInterval time.Duration

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns the HTTP service container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerMetrics(container); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerGateway(container); err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns the HTTP service container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
		func(cfg *config.Config) reconcileInterval {
			return reconcileInterval(cfg.Tracking.ReconcileInterval)
		},
	)
}

func registerMetrics(container *dig.Container) error {
	return provideAll(container, provideMetrics)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

type gatewayIn struct {
	dig.In

	Client  *marketplace.Client
	Logger  logx.Logger
	Retries prometheus.Counter `name:"gateway_retries_total"`
	Cfg     *config.Config
}

func newRetryingGateway(in gatewayIn) *marketplace.RetryingGateway {
	gw := in.Cfg.Marketplace.Gateway
	return marketplace.NewRetryingGateway(in.Client, in.Logger, in.Retries, marketplace.RetryConfig{
		MaxAttempts: gw.MaxAttempts,
		BaseDelay:   gw.BaseDelay,
		MaxDelay:    gw.MaxDelay,
	})
}

func registerGateway(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config) *marketplace.Client {
			return marketplace.NewClient(cfg.Marketplace.BaseURL, cfg.Marketplace.Token)
		},
		newRetryingGateway,
	)
}

type trackerIn struct {
	dig.In

	Gateway   *marketplace.RetryingGateway
	Locations location.Provider
	Journal   tracking.Journal
	Logger    logx.Logger
	Ops       *prometheus.CounterVec
	Completed prometheus.Counter `name:"deliveries_completed_total"`
	Cfg       *config.Config
}

func newTracker(in trackerIn) *tracking.Tracker {
	return tracking.NewTracker(
		in.Gateway,
		in.Locations,
		in.Journal,
		in.Logger,
		in.Ops,
		in.Completed,
		in.Cfg.Tracking.OperationTimeout,
	)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewJournalRepo,
		func(repo *repository.JournalRepo) tracking.Journal {
			return NewJournalRecorder(repo)
		},
		func(cfg *config.Config) location.Provider {
			return location.NewStatic(cfg.Location.Lat, cfg.Location.Lng)
		},
		newTracker,
	)
}

type pprofOut struct {
	dig.Out

	Server *http.Server `name:"pprof_server"`
}

func newPprofServer(cfg *config.Config) pprofOut {
	if cfg.Pprof.Addr == "" {
		return pprofOut{}
	}
	return pprofOut{Server: &http.Server{
		Addr: cfg.Pprof.Addr,
		Handler: pprofserver.Handler(pprofserver.Config{
			User: cfg.Pprof.User,
			Pass: cfg.Pprof.Pass,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		handlers.NewTrackingUsecase,
		handlers.NewTrackingHandler,
		newRateLimiter,
		newRateLimitMiddleware,
		router.New,
		serverProvider,
		newPprofServer,
	)
}
