package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/cdn"
	"github.com/yokitheyo/imagestore/internal/config"
	"github.com/yokitheyo/imagestore/internal/domain"
	"github.com/yokitheyo/imagestore/internal/event"
	"github.com/yokitheyo/imagestore/internal/fetch"
	httpHandler "github.com/yokitheyo/imagestore/internal/handler/http"
	"github.com/yokitheyo/imagestore/internal/handler/middleware"
	infradatabase "github.com/yokitheyo/imagestore/internal/infrastructure/database"
	"github.com/yokitheyo/imagestore/internal/infrastructure/kafka"
	"github.com/yokitheyo/imagestore/internal/infrastructure/storage"
	"github.com/yokitheyo/imagestore/internal/repository/postgres"
	"github.com/yokitheyo/imagestore/internal/retry"
	"github.com/yokitheyo/imagestore/internal/usecase"
	"github.com/yokitheyo/imagestore/internal/validation"
)

func main() {
	zlog.Init()
	zlog.Logger.Info().Msg("Starting Image Store API Server")

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

	zlog.Logger.Info().Msg("Running database migrations...")
	if err := infradatabase.RunMigrations(database.Master, cfg.Migrations.Path); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("migrations failed")
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

	bus := kafka.NewBus(cfg.Kafka)
	defer bus.Close()

	// Domain events raised by the orchestrators are bridged onto the bus;
	// the workers pick them up from there.
	dispatcher := event.NewDispatcher()
	dispatcher.Subscribe(domain.TopicImageUploaded, event.BusBridge(bus))
	dispatcher.Subscribe(domain.TopicImageDeleted, event.BusBridge(bus))

	repo := postgres.NewMetadataRepository(database, retry.DefaultStrategy)
	validator := validation.New(validation.Limits{
		AllowedFormats: cfg.Images.AllowedFormats,
		MaxSizeBytes:   cfg.Images.MaxSizeBytes,
		MinWidth:       cfg.Images.MinWidth,
		MaxWidth:       cfg.Images.MaxWidth,
		MinHeight:      cfg.Images.MinHeight,
		MaxHeight:      cfg.Images.MaxHeight,
		MinAspectRatio: cfg.Images.MinAspectRatio,
		MaxAspectRatio: cfg.Images.MaxAspectRatio,
	})

	rewriter := cdn.NewRewriter(cfg.CDN)
	downloader := fetch.NewDownloader(time.Duration(cfg.Images.FetchTimeoutSec) * time.Second)

	uploads := usecase.NewUploadService(repo, blobStorage, validator, dispatcher)
	deletes := usecase.NewDeleteService(repo, dispatcher)
	search := usecase.NewSearchService(repo, blobStorage, rewriter.Rewrite)

	engine := ginext.New("api")
	engine.Use(
		middleware.ErrorHandlerMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.CORSMiddleware(),
	)

	imageHandler := httpHandler.NewImageHandler(uploads, deletes, search, downloader, cfg.Server.MaxUploadSizeMB)
	imageHandler.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Logger.Fatal().Err(err).Msg("failed to start API server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	} else {
		zlog.Logger.Info().Msg("HTTP server stopped gracefully")
	}

	if database.Master != nil {
		if err := database.Master.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("closing db master failed")
		}
		for i, s := range database.Slaves {
			if err := s.Close(); err != nil {
				zlog.Logger.Error().Err(err).Int("slave_index", i).Msg("closing db slave failed")
			}
		}
	}

	zlog.Logger.Info().Msg("API shutdown complete")
}
