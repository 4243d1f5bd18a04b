package app

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"delivery-tracking/internal/config"
	"delivery-tracking/internal/http/handlers"
	"delivery-tracking/internal/logx"
)

func testConfig() *config.Config {
	return &config.Config{
		Port: 8080,
		Marketplace: config.Marketplace{
			BaseURL: "http://marketplace.local",
			Gateway: config.GatewaySettings{
				MaxAttempts: 1,
				BaseDelay:   time.Millisecond,
				MaxDelay:    time.Millisecond,
			},
		},
		Tracking: config.Tracking{
			OperationTimeout:  time.Second,
			ReconcileInterval: time.Minute,
		},
	}
}

func provideStubMetrics(t *testing.T, c *dig.Container) {
	t.Helper()

	counters := []string{
		"rate_limit_exceeded_total",
		"gateway_retries_total",
		"deliveries_completed_total",
	}
	for _, name := range counters {
		n := name
		require.NoError(t, c.Provide(func() prometheus.Counter {
			return prometheus.NewCounter(prometheus.CounterOpts{
				Name: n + "_unit",
				Help: "stub",
			})
		}, dig.Name(n)))
	}
	require.NoError(t, c.Provide(func() *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_operations_total_unit",
			Help: "stub",
		}, []string{"operation", "outcome"})
	}))
}

func setupTestContainer(t *testing.T) *dig.Container {
	t.Helper()

	c := dig.New()

	require.NoError(t, c.Provide(func() context.Context { return context.Background() }))
	require.NoError(t, c.Provide(logx.Nop))
	require.NoError(t, c.Provide(testConfig))
	require.NoError(t, c.Provide(func() *pgxpool.Pool { return &pgxpool.Pool{} }))
	provideStubMetrics(t, c)

	require.NoError(t, registerGateway(c))
	require.NoError(t, registerService(c))
	require.NoError(t, registerHTTP(c))

	return c
}

func TestRegisterServiceAndHTTP_ProvidesHttpServerAndHandlers(t *testing.T) {
	t.Parallel()

	c := setupTestContainer(t)

	err := c.Invoke(func(in httpServersIn, base *handlers.Handlers, tracking *handlers.TrackingHandler) {
		require.NotNil(t, in.Main, "http.Server is nil")
		require.Equal(t, ":8080", in.Main.Addr)
		require.Greater(t, in.Main.ReadHeaderTimeout, time.Duration(0))
		require.Greater(t, in.Main.ReadTimeout, time.Duration(0))
		require.Greater(t, in.Main.WriteTimeout, time.Duration(0))
		require.Greater(t, in.Main.IdleTimeout, time.Duration(0))
		require.NotNil(t, base)
		require.NotNil(t, tracking)
	})
	require.NoError(t, err)
}

func TestProvideAll_Success(t *testing.T) {
	t.Parallel()

	c := dig.New()

	err := provideAll(c,
		func() context.Context { return context.Background() },
		func() time.Duration { return 3 * time.Second },
	)
	require.NoError(t, err)

	err = c.Invoke(func(ctx context.Context, d time.Duration) {
		require.NotNil(t, ctx)
		require.Equal(t, 3*time.Second, d)
	})
	require.NoError(t, err)
}

func TestProvideAll_InvalidProvider(t *testing.T) {
	t.Parallel()

	c := dig.New()

	type bad struct{}
	err := provideAll(c, bad{})
	require.Error(t, err)
}

func TestRegisterCore_ProvidesContextAndLogger(t *testing.T) {
	t.Parallel()

	c := dig.New()
	ctx := context.Background()

	err := registerCore(c, ctx)
	require.NoError(t, err)

	err = c.Invoke(func(gotCtx context.Context, logger logx.Logger) {
		require.Equal(t, ctx, gotCtx)
		require.NotNil(t, logger)
	})
	require.NoError(t, err)
}

func TestRegisterDb_UsesDbConnectAndProvidesPool(t *testing.T) {
	t.Parallel()

	c := dig.New()
	ctx := context.Background()

	cfg := testConfig()
	cfg.DB = config.DB{
		Host: "localhost",
		Port: "5432",
		User: "user",
		Pass: "pass",
		Name: "db",
	}

	require.NoError(t, c.Provide(func() context.Context { return ctx }))
	require.NoError(t, c.Provide(func() *config.Config { return cfg }))

	stubPool := &pgxpool.Pool{}

	stubConnect := func(
		gotCtx context.Context,
		dsn string,
		retries int,
		delay time.Duration,
	) (*pgxpool.Pool, error) {
		require.Equal(t, ctx, gotCtx)
		require.Equal(t, cfg.DB.DSN(), dsn)
		require.Equal(t, 10, retries)
		require.Equal(t, time.Second, delay)
		return stubPool, nil
	}

	err := registerDb(c, stubConnect)
	require.NoError(t, err)

	err = c.Invoke(func(pool *pgxpool.Pool) {
		require.Equal(t, stubPool, pool)
	})
	require.NoError(t, err)
}

func TestContainerBuilder_Build_Success(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	builder := NewContainerBuilder().
		WithDBConnect(func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error) {
			return &pgxpool.Pool{}, nil
		})

	c, err := builder.build(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)

	err = c.Invoke(func(logger logx.Logger) {
		require.NotNil(t, logger)
	})
	require.NoError(t, err)
}

func TestContainerBuilder_BuildWorker_Success(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	builder := NewContainerBuilder().
		WithDBConnect(func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error) {
			return &pgxpool.Pool{}, nil
		})

	c, err := builder.buildWorker(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)

	err = c.Invoke(func(logger logx.Logger) {
		require.NotNil(t, logger)
	})
	require.NoError(t, err)
}

func TestContainerBuilder_MustBuild_LogsFatalOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	builder := NewContainerBuilder().
		WithDBConnect(func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error) {
			return &pgxpool.Pool{}, nil
		}).
		WithLogFatalf(func(format string, args ...interface{}) {
			require.FailNowf(t, "logFatalf must not be called", format, args...)
		})

	c := builder.MustBuild(ctx)
	require.NotNil(t, c)
}
