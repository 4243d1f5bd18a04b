package app

import (
	"context"
	"fmt"

	"go.uber.org/dig"

	"delivery-tracking/internal/config"
	"delivery-tracking/internal/gateway/marketplace"
	"delivery-tracking/internal/logx"
	"delivery-tracking/internal/repository"
	"delivery-tracking/internal/service/assignments"
	"delivery-tracking/internal/transport/kafka"
)

// MustBuildWorkerContainer builds and returns the worker container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

// MustBuildWorker builds and returns the worker container
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
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
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		repository.NewJournalRepo,
		func(repo *repository.JournalRepo) assignments.TxRunner { return repo },
		assignments.NewProcessor,
		func(gw *marketplace.RetryingGateway, repo *repository.JournalRepo, logger logx.Logger) *assignments.Reconciler {
			return assignments.NewReconciler(gw, repo, repo, logger)
		},
		makeAssignmentsKafka,
		func(cfg *config.Config, logger logx.Logger, h kafka.HandleFunc) (*kafka.Consumer, error) {
			return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, h)
		},
	)
}
