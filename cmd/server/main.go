package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/config"
	"github.com/mamadbah2/repricer/internal/domain/models"
	"github.com/mamadbah2/repricer/internal/repository/mongodb"
	"github.com/mamadbah2/repricer/internal/repository/sheets"
	"github.com/mamadbah2/repricer/internal/scheduler"
	"github.com/mamadbah2/repricer/internal/server/handlers"
	"github.com/mamadbah2/repricer/internal/server/router"
	"github.com/mamadbah2/repricer/internal/service/engine"
	"github.com/mamadbah2/repricer/internal/service/pricing"
	"github.com/mamadbah2/repricer/internal/service/sources"
	"github.com/mamadbah2/repricer/pkg/clients/market"
	"github.com/mamadbah2/repricer/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
	if err != nil {
		baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
	}

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	feeds := buildFeeds(cfg.Feeds)

	rate := sources.NewSheetRateProvider(sheetsRepo, models.CellRef{
		SpreadsheetID: cfg.Rate.SpreadsheetID,
		Sheet:         cfg.Rate.Sheet,
		Cell:          cfg.Rate.Cell,
	}, baseLogger.Named("rate"))

	loader := sheets.NewRowLoader(sheetsRepo, cfg.Sheets.Worksheet, baseLogger.Named("repo.rows"))
	stockRouter := pricing.NewStockRouter(sources.NewSheetCounterReader(sheetsRepo), baseLogger.Named("svc.stock"))
	aggregator := pricing.NewAggregator(baseLogger.Named("svc.aggregate"))
	resolver := pricing.NewResolver(pricing.UniformSampler{}, baseLogger.Named("svc.resolve"))
	bounds := sources.NewSheetBoundProvider(sheetsRepo, baseLogger.Named("svc.bounds"))

	eng := engine.New(
		loader,
		sheetsRepo,
		mongoRepo,
		feeds,
		rate,
		stockRouter,
		aggregator,
		resolver,
		bounds,
		engine.RetryPolicy{
			MaxAttempts: cfg.Repricing.RetryAttempts,
			Backoff:     cfg.Repricing.RetryBackoff,
		},
		baseLogger.Named("svc.engine"),
	)

	repricingHandler := handlers.NewRepricingHandler(eng, mongoRepo, baseLogger.Named("handlers.repricing"))
	ginEngine := router.New(repricingHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, eng, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      ginEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildFeeds(cfg config.FeedsConfig) map[models.SourceTag]market.Client {
	feeds := map[models.SourceTag]market.Client{}

	add := func(tag models.SourceTag, feed config.FeedConfig) {
		if feed.BaseURL == "" {
			return
		}
		feeds[tag] = market.NewClient(tag, market.Options{
			BaseURL:    feed.BaseURL,
			APIKey:     feed.APIKey,
			Timeout:    cfg.Timeout,
			RetryCount: cfg.RetryCount,
		})
	}

	add(models.SourcePA, cfg.Primary)
	add(models.SourceG2G, cfg.G2G)
	add(models.SourceFUN, cfg.FUN)
	add(models.SourceBIJ, cfg.BIJ)

	return feeds
}
