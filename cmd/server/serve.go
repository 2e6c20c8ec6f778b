package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/dltrack/api"
	"github.com/yourusername/dltrack/internal/app"
	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/internal/infrastructure"
	"github.com/yourusername/dltrack/pkg/logger"
)

const defaultShutdownTimeout = 30 * time.Second

// serve wires the application and serves HTTP on listener until ctx is done
func serve(ctx context.Context, config *domain.Config, ml *logger.MultiLogger, listener net.Listener) error {
	log := ml.General()

	registry := app.NewRegistry(app.NewNotifier(log), ml.Engine())

	engine := infrastructure.NewEngineClient(&config.Engine, ml.Control())
	locator := infrastructure.NewFolderLocator(&config.Locator, ml.Control())
	dispatcher := app.NewDispatcher(registry, engine, locator, config.Engine.CommandTimeout, ml.Control())

	refresher := infrastructure.NewArtifactRefresher(&config.Artifacts, log)
	watcher := app.NewArtifactWatcher(registry, refresher, config.Artifacts, log)

	notifications := infrastructure.NewNotificationService(&config.Notification, log)
	completion := app.NewCompletionObserver(registry.Notifier(), notifications, log)

	var snapshots *app.SnapshotService
	if config.Store.DatabasePath != "" {
		repo, err := infrastructure.NewSQLiteSnapshotRepository(config.Store.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open snapshot store: %w", err)
		}
		defer repo.Close()
		snapshots = app.NewSnapshotService(registry, repo, log)
	}

	ready := &atomic.Bool{}
	if config.Store.RestoreOnStart && snapshots != nil {
		if _, err := snapshots.Restore(); err != nil {
			ml.LogAppError("Snapshot restore on start failed", zap.Error(err))
		}
	}

	// restored artifacts are the watcher's baseline
	watcher.Start()
	ready.Store(true)

	g, gctx := errgroup.WithContext(ctx)

	router := api.SetupRouter(api.Services{
		Registry:   registry,
		Dispatcher: dispatcher,
		Snapshots:  snapshots,
		Ready:      ready,
		Shutdown:   gctx.Done(),
	}, ml)

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownTimeout := config.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return completion.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		ready.Store(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		watcher.Stop()
		dispatcher.Wait()
		if err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
