package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyxaxa/image-vault/config"
	"github.com/andreyxaxa/image-vault/internal/controller/restapi"
	"github.com/andreyxaxa/image-vault/internal/controller/worker/outbox"
	"github.com/andreyxaxa/image-vault/internal/controller/worker/reconciler"
	infrakafka "github.com/andreyxaxa/image-vault/internal/infrastructure/kafka"
	"github.com/andreyxaxa/image-vault/internal/repo/persistent"
	"github.com/andreyxaxa/image-vault/internal/usecase/image"
	"github.com/andreyxaxa/image-vault/pkg/httpserver"
	"github.com/andreyxaxa/image-vault/pkg/kafka/producer"
	"github.com/andreyxaxa/image-vault/pkg/logger"
	"github.com/andreyxaxa/image-vault/pkg/postgres"
	"github.com/andreyxaxa/image-vault/pkg/s3client"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, s3client.Region(cfg.S3.Region))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}
	err = s3c.EnsureBucket(s3Ctx, cfg.S3.Bucket)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3c.EnsureBucket: %w", err))
	}

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	metadataRepo := persistent.NewImageMetadataRepo(pg)
	outboxRepo := persistent.NewOutboxRepo(pg)

	err = metadataRepo.EnsureSchema(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - metadataRepo.EnsureSchema: %w", err))
	}
	err = outboxRepo.EnsureSchema(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRepo.EnsureSchema: %w", err))
	}

	// Use-Case
	imageUseCase := image.New(
		persistent.NewBlobRepo(s3c, cfg.S3.Bucket),
		metadataRepo,
		outboxRepo,
		pg,
		l,
	)

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		imageUseCase,
		infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.Topic),
		l,
		cfg.OutboxRelay.PollInterval,
		cfg.OutboxRelay.CleanupInterval,
		cfg.OutboxRelay.MarkFailedInterval,
		cfg.OutboxRelay.ProcessBatchTimeout,
		cfg.OutboxRelay.BatchSize,
		cfg.OutboxRelay.MaxRetries,
	)

	// Reconciler Worker
	reconcilerWorker := reconciler.New(
		imageUseCase,
		l,
		cfg.Reconciler.Interval,
		cfg.Reconciler.SweepTimeout,
		cfg.Reconciler.DeleteOrphans,
	)

	// HTTP Server
	httpServer := httpserver.New(
		l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.BodyLimit(cfg.HTTP.BodyLimit),
	)
	restapi.NewRouter(httpServer.App, cfg, imageUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = reconcilerWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - reconcilerWorker.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}

	rcShutdownCtx, rcShutdownCancel := context.WithTimeout(ctx, cfg.Reconciler.ShutdownTimeout)
	defer rcShutdownCancel()
	err = reconcilerWorker.Shutdown(rcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - reconcilerWorker.Shutdown: %w", err))
	}
}
