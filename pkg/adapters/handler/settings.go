package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
)

type SettingsHandler struct {
	settings ports.SettingsService
	updates  ports.UpdateService
}

func NewSettingsHandler(settings ports.SettingsService, updates ports.UpdateService) *SettingsHandler {
	return &SettingsHandler{settings: settings, updates: updates}
}

func (h *SettingsHandler) writeFont(w http.ResponseWriter, r *http.Request, size float64, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"font_size": size})
}

func (h *SettingsHandler) FontSize(w http.ResponseWriter, r *http.Request) {
	size, err := h.settings.FontSize()
	h.writeFont(w, r, size, err)
}

func (h *SettingsHandler) IncreaseFont(w http.ResponseWriter, r *http.Request) {
	size, err := h.settings.IncreaseFont()
	h.writeFont(w, r, size, err)
}

func (h *SettingsHandler) DecreaseFont(w http.ResponseWriter, r *http.Request) {
	size, err := h.settings.DecreaseFont()
	h.writeFont(w, r, size, err)
}

// CheckUpdate compares the running build with the published version file
func (h *SettingsHandler) CheckUpdate(w http.ResponseWriter, r *http.Request) {
	info, err := h.updates.Check(r.Context())
	if err != nil {
		http.Error(w, "Failed to check for updates", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, info)
}
