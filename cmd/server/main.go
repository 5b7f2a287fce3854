package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/handler"
	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/media"
	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/settings"
	"github.com/wadjakorntonsri/dance-trainer/pkg/config"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/services"
	"github.com/wadjakorntonsri/dance-trainer/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.AppEnv == "production")
	log := logging.LogService("Server")

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer repo.Close()

	prefs, err := settings.NewBadgerStore(cfg.SettingsDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to open settings store")
	}
	defer prefs.Close()

	store, err := media.NewFileStore(cfg.MediaDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to open media directory")
	}

	// Initialize Services
	videoService := services.NewVideoService(repo, store)
	if err := videoService.EnsureSeed(context.Background()); err != nil {
		log.WithError(err).Warn("Failed to insert seed video")
	}
	tasks := services.NewTaskRunner()

	mux := handler.NewRouter(cfg, handler.Services{
		Videos:   videoService,
		Backup:   services.NewBackupService(repo, store),
		Settings: services.NewSettingsService(prefs),
		Updates:  services.NewUpdateService(&http.Client{Timeout: cfg.UpdateTimeout}, cfg.VersionURL, cfg.DownloadURL, cfg.AppVersionCode),
		Tasks:    tasks,
		Media:    store,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Listen failed")
		}
	}()

	<-done
	log.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("Graceful shutdown failed")
		_ = server.Close()
	}
	if err := tasks.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("Background tasks still running")
	}
	log.Info("Server stopped")
}
