package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/service/assignments"
	"delivery-tracking/internal/transport/kafka"
)

// WorkerRunner runs the assignment-events worker
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the worker using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	reconciler *assignments.Reconciler,
	interval reconcileInterval,
) error {
	if consumer == nil {
		return fmt.Errorf("kafka consumer is nil: worker container misconfigured")
	}
	defer closeWorker(pool, logger, consumer)

	startReconcileLoop(ctx, logger, reconciler, time.Duration(interval))

	logger.Info("delivery-tracking-worker started")
	return consumer.Run(ctx)
}

func startReconcileLoop(ctx context.Context, logger logx.Logger, reconciler *assignments.Reconciler, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				closed, err := reconciler.Reconcile(ctx)
				if err != nil {
					logger.Error("reconcile pass failed", logx.Any("err", err))
					continue
				}
				if closed > 0 {
					logger.Info("reconcile pass closed assignments", logx.Int("closed", closed))
				}
			}
		}
	}()
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, consumer *kafka.Consumer) {
	if err := consumer.Close(); err != nil {
		logger.Error("kafka close error", logx.Any("err", err))
	}
	if pool != nil {
		pool.Close()
	}
}
