package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wadjakorntonsri/dance-trainer/pkg/config"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/services"
	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
)

// MediaPrefix is where local clips are served from.
const MediaPrefix = "/media/"

// Services bundles everything the router dispatches to.
type Services struct {
	Videos   ports.VideoService
	Backup   ports.BackupService
	Settings ports.SettingsService
	Updates  ports.UpdateService
	Tasks    *services.TaskRunner
	Media    MediaResolver
}

// RegisterAPI mounts the catalog API on mux without authentication.
func RegisterAPI(mux *http.ServeMux, svc Services) {
	h := NewHTTPHandler(svc.Videos, MediaPrefix)
	bh := NewBackupHandler(svc.Backup, svc.Tasks)
	sh := NewSettingsHandler(svc.Settings, svc.Updates)

	mux.HandleFunc("POST /api/v1/videos", h.Create)
	mux.HandleFunc("GET /api/v1/videos", h.List)
	mux.HandleFunc("POST /api/v1/videos/attach", h.Attach)
	mux.HandleFunc("POST /api/v1/videos/upload", h.Upload)
	mux.HandleFunc("POST /api/v1/videos/import-line", h.ImportLine)
	mux.HandleFunc("GET /api/v1/videos/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/videos/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/videos/{id}", h.Delete)
	mux.HandleFunc("PUT /api/v1/videos/{id}/star", h.Star)
	mux.HandleFunc("GET /api/v1/videos/{id}/share", h.Share)
	mux.HandleFunc("GET /api/v1/videos/{id}/playback", h.Playback)

	mux.HandleFunc("GET /api/v1/tags", h.Tags)
	mux.HandleFunc("DELETE /api/v1/tags/{tag}", h.DeleteTag)

	mux.HandleFunc("GET /api/v1/backup", bh.Export)
	mux.HandleFunc("POST /api/v1/backup", bh.Import)
	mux.HandleFunc("GET /api/v1/tasks/{id}", bh.Task)

	mux.HandleFunc("GET /api/v1/settings/font", sh.FontSize)
	mux.HandleFunc("POST /api/v1/settings/font/increase", sh.IncreaseFont)
	mux.HandleFunc("POST /api/v1/settings/font/decrease", sh.DecreaseFont)
	mux.HandleFunc("GET /api/v1/update", sh.CheckUpdate)

	if svc.Media != nil {
		mux.HandleFunc("GET "+MediaPrefix+"{name}", ServeMedia(svc.Media))
	}
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services) http.Handler {
	mw := NewMiddleware(cfg)
	authHandler := NewAuthHandler(cfg)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes (API & media)
	protectedMux := http.NewServeMux()
	RegisterAPI(protectedMux, svc)

	protected := mw.AuthMiddleware(protectedMux)
	mux.Handle("/api/v1/", protected)
	mux.Handle(MediaPrefix, protected)

	return mw.Logging(mux)
}
