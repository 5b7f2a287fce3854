package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	apphandler "github.com/wadjakorntonsri/dance-trainer/pkg/adapters/handler"
	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/media"
	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/dance-trainer/pkg/adapters/settings"
	"github.com/wadjakorntonsri/dance-trainer/pkg/config"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/services"
	"github.com/wadjakorntonsri/dance-trainer/pkg/logging"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, true)

	// Note: On Vercel the filesystem is ephemeral, so use a Turso URL in DATABASE_URL
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	prefs, err := settings.NewInMemoryStore()
	if err != nil {
		panic(err)
	}

	store, err := media.NewFileStore(filepath.Join(os.TempDir(), "dance-trainer-media"))
	if err != nil {
		panic(err)
	}

	videoService := services.NewVideoService(repo, store)
	_ = videoService.EnsureSeed(context.Background())

	mux = apphandler.NewRouter(cfg, apphandler.Services{
		Videos:   videoService,
		Backup:   services.NewBackupService(repo, store),
		Settings: services.NewSettingsService(prefs),
		Updates:  services.NewUpdateService(&http.Client{Timeout: cfg.UpdateTimeout}, cfg.VersionURL, cfg.DownloadURL, cfg.AppVersionCode),
		Tasks:    services.NewTaskRunner(),
		Media:    store,
	})
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
