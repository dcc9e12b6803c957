package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/labstock/internal/config"
	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/repository"
	"github.com/mamadbah2/labstock/internal/repository/localfile"
	"github.com/mamadbah2/labstock/internal/repository/memory"
	"github.com/mamadbah2/labstock/internal/repository/mongodb"
	"github.com/mamadbah2/labstock/internal/repository/sheets"
	"github.com/mamadbah2/labstock/internal/scheduler"
	"github.com/mamadbah2/labstock/internal/server/handlers"
	"github.com/mamadbah2/labstock/internal/server/router"
	alertssvc "github.com/mamadbah2/labstock/internal/service/alerts"
	inventorysvc "github.com/mamadbah2/labstock/internal/service/inventory"
	"github.com/mamadbah2/labstock/pkg/clients/notify"
	"github.com/mamadbah2/labstock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, closeStore, err := openStore(context.Background(), cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init record store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeStore()

	inventorySvc := inventorysvc.NewService(store, inventorysvc.Options{
		LowStock:       lowStockThresholds(cfg.Inventory.LowStock),
		NoStockMarkers: cfg.Inventory.NoStockMarkers,
		ReportTTL:      cfg.Inventory.ReportTTL,
	}, logger.Named(baseLogger, "svc.inventory"))

	var notifier notify.Client
	if cfg.Alerts.WebhookURL != "" {
		notifier = notify.NewClient(cfg.Alerts.WebhookURL)
		baseLogger.Info("low stock notifications enabled")
	} else {
		baseLogger.Warn("notification webhook missing, low stock alerts are only logged")
	}
	alertsSvc := alertssvc.NewService(inventorySvc, notifier, logger.Named(baseLogger, "svc.alerts"))

	inventoryHandler := handlers.NewInventoryHandler(inventorySvc, cfg.Server.UploadMaxBytes, logger.Named(baseLogger, "handlers.inventory"))
	engine := router.New(inventoryHandler, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(cfg.Alerts, alertsSvc, inventorySvc, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Store.Backend))
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

// openStore builds the configured backend. The read cache wraps every backend
// except Google Sheets, whose reads always go to the API.
func openStore(ctx context.Context, cfg *config.Config, base *zap.Logger) (repository.Store, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendSheets:
		store, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(base, "repo.sheets"))
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case config.BackendMongo:
		store, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(base, "repo.mongodb"))
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			if err := store.Close(context.Background()); err != nil {
				base.Error("failed to close mongodb connection", zap.Error(err))
			}
		}
		return repository.NewCachedStore(store, cfg.Store.CacheTTL, logger.Named(base, "repo.cache")), closeFn, nil

	case config.BackendMemory:
		return memory.NewStore(), noop, nil

	case config.BackendLocal:
		store, err := localfile.NewStore(cfg.Local.DataDir, localfile.Format(cfg.Local.Format), logger.Named(base, "repo.localfile"))
		if err != nil {
			return nil, noop, err
		}
		return repository.NewCachedStore(store, cfg.Store.CacheTTL, logger.Named(base, "repo.cache")), noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func lowStockThresholds(raw map[string]int) map[models.Kind]int {
	out := make(map[models.Kind]int, len(raw))
	for kind, v := range raw {
		out[models.Kind(kind)] = v
	}
	return out
}
