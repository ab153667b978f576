package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/config"
	"github.com/yokitheyo/imagestore/internal/domain"
	infradatabase "github.com/yokitheyo/imagestore/internal/infrastructure/database"
	"github.com/yokitheyo/imagestore/internal/infrastructure/kafka"
	"github.com/yokitheyo/imagestore/internal/infrastructure/storage"
	"github.com/yokitheyo/imagestore/internal/repository/postgres"
	"github.com/yokitheyo/imagestore/internal/retry"
	"github.com/yokitheyo/imagestore/internal/usecase"
	"github.com/yokitheyo/imagestore/internal/worker"
)

func main() {
	zlog.Init()
	zlog.Logger.Info().Msg("Starting Image Store Worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := infradatabase.Connect(ctx, cfg.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	blobStorage, err := storage.NewMinioStorage(ctx, cfg.Storage)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		if err := kafka.WaitReady(ctx, cfg.Kafka.Brokers[0]); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("kafka never became ready")
		}
		if err := kafka.InitTopics(ctx, cfg.Kafka.Brokers[0], 3*time.Second,
			domain.TopicImageUploaded, domain.TopicImageDeleted); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to create kafka topics")
		}
	}

	repo := postgres.NewMetadataRepository(database, retry.DefaultStrategy)

	thumbnails := usecase.NewThumbnailService(repo, blobStorage, cfg.Images.ThumbnailWidths)
	cleanup := usecase.NewCleanupService(blobStorage)

	thumbnailWorker := worker.NewThumbnailWorker(thumbnails)
	cleanupWorker := worker.NewCleanupWorker(cleanup)

	uploadedConsumer := kafka.NewConsumer(cfg.Kafka, domain.TopicImageUploaded, thumbnailWorker.Handle)
	deletedConsumer := kafka.NewConsumer(cfg.Kafka, domain.TopicImageDeleted, cleanupWorker.Handle)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := uploadedConsumer.Start(ctx); err != nil {
			zlog.Logger.Error().Err(err).Msg("uploaded consumer stopped with error")
		}
	}()
	go func() {
		defer wg.Done()
		if err := deletedConsumer.Start(ctx); err != nil {
			zlog.Logger.Error().Err(err).Msg("deleted consumer stopped with error")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("Shutdown signal received")
	wg.Wait()

	if err := uploadedConsumer.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("closing uploaded consumer failed")
	}
	if err := deletedConsumer.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("closing deleted consumer failed")
	}

	if database.Master != nil {
		if err := database.Master.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("closing db master failed")
		}
	}

	zlog.Logger.Info().Msg("Worker shutdown complete")
}
