package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/playback"
	"github.com/wadjakorntonsri/dance-trainer/pkg/logging"
	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
)

// MaxUploadSize caps uploaded clips and backup archives.
const MaxUploadSize = 512 << 20

type HTTPHandler struct {
	service   ports.VideoService
	mediaBase string
}

func NewHTTPHandler(service ports.VideoService, mediaBase string) *HTTPHandler {
	return &HTTPHandler{service: service, mediaBase: mediaBase}
}

// SaveVideoRequest payload. Hashtags are always derived from Notes.
type SaveVideoRequest struct {
	Title     string `json:"title"`
	VideoURL  string `json:"video_url"`
	Notes     string `json:"notes"`
	IsStarred bool   `json:"is_starred"`
}

type AttachRequest struct {
	VideoURL string `json:"video_url"`
}

// videoItem is a list row with its thumbnail.
type videoItem struct {
	domain.Video
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type StarRequest struct {
	IsStarred bool `json:"is_starred"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrBaselineTag):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrImportFailed):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		logging.LogService("HTTPHandler").WithError(err).WithFields(logrus.Fields{
			"path": r.URL.Path,
			"user": UserEmail(r.Context()),
		}).Error("Request failed")
	}
	http.Error(w, err.Error(), status)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

// Create a new video
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SaveVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	video, err := h.service.Save(r.Context(), domain.Video{
		Title:     req.Title,
		VideoURL:  req.VideoURL,
		Notes:     req.Notes,
		IsStarred: req.IsStarred,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

// Update overwrites an existing video, last write wins
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SaveVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	if _, err := h.service.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	video, err := h.service.Save(r.Context(), domain.Video{
		ID:        id,
		Title:     req.Title,
		VideoURL:  req.VideoURL,
		Notes:     req.Notes,
		IsStarred: req.IsStarred,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	video, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

// List videos, optionally filtered by ?starred=1&tag=lindy&q=swing
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	criteria := domain.Criteria{
		StarredOnly: queryBool(r, "starred"),
		Tag:         r.URL.Query().Get("tag"),
		Query:       r.URL.Query().Get("q"),
	}

	videos, err := h.service.List(r.Context(), criteria)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]videoItem, 0, len(videos))
	for _, v := range videos {
		items = append(items, videoItem{Video: v, ThumbnailURL: playback.Thumbnail(v)})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     items,
		"total":    len(videos),
		"criteria": criteria,
	})
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) Star(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req StarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetStarred(r.Context(), id, req.IsStarred); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Attach resolves a shared link to its stored record or a new draft
func (h *HTTPHandler) Attach(w http.ResponseWriter, r *http.Request) {
	var req AttachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	video, err := h.service.Attach(r.Context(), req.VideoURL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

// Upload stores a shared local clip and returns a draft pointing at the copy
func (h *HTTPHandler) Upload(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxUploadSize)

	video, err := h.service.AttachUpload(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

// ImportLine accepts a "Title|URL|Notes" payload
func (h *HTTPHandler) ImportLine(w http.ResponseWriter, r *http.Request) {
	video, err := h.service.ImportLine(r.Context(), r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if video == nil {
		// Unrecognised shapes are skipped, not rejected.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

func (h *HTTPHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	msg, err := h.service.Share(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *HTTPHandler) Playback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	pb, err := h.service.Playback(r.Context(), id, h.mediaBase)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := applyPlayerControls(pb, r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, pb)
}

// applyPlayerControls handles ?speed= and ?position=&delta=. delta may be a
// number of seconds or "forward"/"rewind" for one seek step.
func applyPlayerControls(pb *domain.Playback, r *http.Request) error {
	q := r.URL.Query()
	if raw := q.Get("speed"); raw != "" {
		speed, err := strconv.ParseFloat(raw, 64)
		if err != nil || !playback.ValidSpeed(speed) {
			return fmt.Errorf("unsupported speed %q", raw)
		}
		pb.Speed = speed
	}

	raw := q.Get("position")
	if raw == "" {
		return nil
	}
	position, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(position) {
		return fmt.Errorf("invalid position %q", raw)
	}
	var delta float64
	switch d := q.Get("delta"); d {
	case "":
	case "forward":
		delta = playback.SeekStep
	case "rewind":
		delta = -playback.SeekStep
	default:
		if delta, err = strconv.ParseFloat(d, 64); err != nil || !finite(delta) {
			return fmt.Errorf("invalid delta %q", d)
		}
	}
	seeked := playback.Seek(position, delta)
	pb.Position = &seeked
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (h *HTTPHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.Tags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": tags})
}

func (h *HTTPHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	if tag == "" {
		http.Error(w, "Tag missing", http.StatusBadRequest)
		return
	}

	changed, err := h.service.DeleteTag(r.Context(), tag)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tag": tag, "updated": changed})
}
