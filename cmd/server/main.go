package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shrinktrack/internal/catalog"
	"github.com/mamadbah2/shrinktrack/internal/config"
	"github.com/mamadbah2/shrinktrack/internal/repository/jsonfile"
	"github.com/mamadbah2/shrinktrack/internal/repository/mongodb"
	"github.com/mamadbah2/shrinktrack/internal/repository/sheets"
	"github.com/mamadbah2/shrinktrack/internal/scheduler"
	"github.com/mamadbah2/shrinktrack/internal/server/handlers"
	"github.com/mamadbah2/shrinktrack/internal/server/router"
	"github.com/mamadbah2/shrinktrack/internal/service/shrink"
	"github.com/mamadbah2/shrinktrack/pkg/clients/webhook"
	"github.com/mamadbah2/shrinktrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := time.LoadLocation(cfg.Storage.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid TIMEZONE", zap.String("timezone", cfg.Storage.Timezone), zap.Error(err))
	}

	store, closeStore, err := newStore(context.Background(), cfg.Storage, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init record store", zap.Error(err))
	}
	defer closeStore()

	departments, err := shrink.LoadDepartments(cfg.Storage.DepartmentsPath)
	if err != nil {
		baseLogger.Fatal("failed to load departments", zap.Error(err))
	}

	shrinkSvc, err := shrink.NewService(context.Background(), store, departments, loc, baseLogger.Named("svc.shrink"))
	if err != nil {
		baseLogger.Fatal("failed to init shrink service", zap.Error(err))
	}

	index := buildCatalog(context.Background(), cfg.Catalog, baseLogger.Named("catalog"))

	shrinkHandler := handlers.NewShrinkHandler(shrinkSvc, baseLogger.Named("handlers.shrink"))
	catalogHandler := handlers.NewCatalogHandler(index, baseLogger.Named("handlers.catalog"))
	engine := router.New(shrinkHandler, catalogHandler, cfg.Server.PublicDir, baseLogger.Named("router"))

	var notifier webhook.Client
	if cfg.Summary.WebhookURL != "" {
		notifier = webhook.NewClient(cfg.Summary.WebhookURL)
		baseLogger.Info("summary webhook enabled")
	}

	sched := scheduler.NewScheduler(cfg.Summary, shrinkSvc, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
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

// newStore picks the record store backend: MongoDB when a URI is
// configured, the local JSON file store otherwise.
func newStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (shrink.Store, func(), error) {
	if cfg.MongoURI != "" {
		mongoStore, err := mongodb.NewStore(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("record store ready", zap.String("backend", "mongodb"))
		return mongoStore, func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				logger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}, nil
	}

	fileStore, err := jsonfile.NewStore(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("record store ready", zap.String("backend", "jsonfile"), zap.String("data_dir", cfg.DataDir))
	return fileStore, func() {}, nil
}

// buildCatalog loads the master item and routing tables from a Google
// Sheet or local CSV files. Any failure degrades to an always-miss index;
// catalog lookups are a convenience, never a hard dependency of recording.
func buildCatalog(ctx context.Context, cfg config.CatalogConfig, logger *zap.Logger) *catalog.Index {
	if cfg.SheetID != "" {
		source, err := sheets.NewGoogleSheetSource(ctx, cfg, logger.Named("source.sheets"))
		if err != nil {
			logger.Warn("catalog sheet unavailable, lookups will always miss", zap.Error(err))
			return catalog.Empty()
		}

		master, err := source.ReadRange(ctx, cfg.MasterRange)
		if err != nil {
			logger.Warn("master item table unreadable, lookups will always miss", zap.Error(err))
			return catalog.Empty()
		}

		routing, err := source.ReadRange(ctx, cfg.RoutingRange)
		if err != nil {
			logger.Warn("routing table unreadable, continuing without routing", zap.Error(err))
			routing = nil
		}

		return catalog.New(catalog.RowsFromValues(master), catalog.RowsFromValues(routing), logger)
	}

	if cfg.CatalogPath == "" {
		logger.Info("no catalog configured, lookups will always miss")
		return catalog.Empty()
	}

	master, err := catalog.LoadCSV(cfg.CatalogPath)
	if err != nil {
		logger.Warn("master item table unreadable, lookups will always miss", zap.Error(err))
		return catalog.Empty()
	}

	var routing [][]string
	if cfg.SubDeptPath != "" {
		routing, err = catalog.LoadCSV(cfg.SubDeptPath)
		if err != nil {
			logger.Warn("routing table unreadable, continuing without routing", zap.Error(err))
			routing = nil
		}
	}

	return catalog.New(master, routing, logger)
}
