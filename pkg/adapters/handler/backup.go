package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/dance-trainer/pkg/core/services"
	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
)

type BackupHandler struct {
	service ports.BackupService
	tasks   *services.TaskRunner
}

func NewBackupHandler(service ports.BackupService, tasks *services.TaskRunner) *BackupHandler {
	return &BackupHandler{service: service, tasks: tasks}
}

// Export returns the JSON backup, or a ZIP with local clips when ?videos=1
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	if queryBool(r, "videos") {
		var buf bytes.Buffer
		if err := h.service.ExportArchive(r.Context(), &buf); err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="DanceTrainer_Full_Backup.zip"`)
		_, _ = w.Write(buf.Bytes())
		return
	}

	data, err := h.service.ExportJSON(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="DanceTrainer_Backup.json"`)
	_, _ = w.Write(data)
}

func isZipUpload(r *http.Request) bool {
	if r.URL.Query().Get("format") == "zip" {
		return true
	}
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/zip") || strings.HasPrefix(ct, "application/x-zip")
}

// Import restores a JSON or ZIP backup. With ?async=1 the import runs in the
// background and a task handle is returned.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, err)
			return
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	isZip := isZipUpload(r)

	if queryBool(r, "async") {
		task := h.tasks.Go("import", func(ctx context.Context) (interface{}, error) {
			return h.service.Import(ctx, bytes.NewReader(data), isZip)
		})
		writeJSON(w, http.StatusAccepted, task.Snapshot())
		return
	}

	n, err := h.service.Import(r.Context(), bytes.NewReader(data), isZip)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"imported": n})
}

func (h *BackupHandler) Task(w http.ResponseWriter, r *http.Request) {
	task, ok := h.tasks.Get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, task.Snapshot())
}
