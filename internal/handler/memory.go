package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/lovejourney/internal/auth"
	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/media"
	"github.com/dukerupert/lovejourney/internal/model"
	"github.com/dukerupert/lovejourney/internal/websocket"
)

type MemoryHandler struct {
	svc      *couple.Service
	uploader media.Uploader
	hub      *websocket.Hub
	logger   *slog.Logger
}

// NewMemoryHandler builds the memory endpoints. uploader may be nil when
// image storage is not configured.
func NewMemoryHandler(svc *couple.Service, uploader media.Uploader, hub *websocket.Hub, logger *slog.Logger) *MemoryHandler {
	return &MemoryHandler{svc: svc, uploader: uploader, hub: hub, logger: logger}
}

func (h *MemoryHandler) broadcast(relationshipID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(relationshipID, msg)
	}
}

func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	memories, err := h.svc.ListMemories(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list memories")
		return
	}
	if memories == nil {
		memories = []model.Memory{}
	}
	writeJSON(w, http.StatusOK, memories)
}

type memoryRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ImageURL    string  `json:"image_url"`
	Date        string  `json:"date"`
}

// parseMemoryDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD day.
func parseMemoryDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req memoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	date, err := parseMemoryDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be an RFC 3339 timestamp or YYYY-MM-DD")
		return
	}

	m, err := h.svc.CreateMemory(r.Context(), auth.UserID(r.Context()), model.NewMemory{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Date:        date,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create memory")
		return
	}

	h.broadcast(m.RelationshipID, websocket.NewMessage(websocket.EntityMemory, websocket.ActionCreated, m.ID, nil))
	writeJSON(w, http.StatusCreated, m)
}

func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	relID, err := h.svc.DeleteMemory(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to delete memory")
		return
	}

	h.broadcast(relID, websocket.NewMessage(websocket.EntityMemory, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage stores a multipart "image" field and returns its URL for use as
// a memory's image_url.
func (h *MemoryHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeError(w, http.StatusNotFound, "image uploads are not enabled")
		return
	}

	rel, err := h.svc.LinkedRelationship(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to upload image")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageSize+1<<20)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > media.MaxImageSize {
		writeError(w, http.StatusRequestEntityTooLarge, "image is too large")
		return
	}

	url, err := h.uploader.Upload(r.Context(), rel.ID, file, header.Size, header.Header.Get("Content-Type"))
	if errors.Is(err, media.ErrUnsupportedType) {
		writeError(w, http.StatusBadRequest, "image must be jpeg, png, gif or webp")
		return
	}
	if err != nil {
		h.logger.Error("upload image", "error", err, "relationship_id", rel.ID)
		writeError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
