package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/lovejourney/internal/auth"
	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/model"
	"github.com/dukerupert/lovejourney/internal/websocket"
)

type RelationshipHandler struct {
	svc    *couple.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewRelationshipHandler(svc *couple.Service, hub *websocket.Hub, logger *slog.Logger) *RelationshipHandler {
	return &RelationshipHandler{svc: svc, hub: hub, logger: logger}
}

func (h *RelationshipHandler) broadcast(relationshipID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(relationshipID, msg)
	}
}

// Get returns the caller's relationship, or null when they have none.
func (h *RelationshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	rel, err := h.svc.Relationship(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get relationship")
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

type relationshipRequest struct {
	PartnerName string  `json:"partner_name"`
	Anniversary string  `json:"anniversary"`
	Description *string `json:"description"`
}

func (h *RelationshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req relationshipRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rel, err := h.svc.CreateRelationship(r.Context(), auth.UserID(r.Context()), model.NewRelationship{
		PartnerName: req.PartnerName,
		Anniversary: req.Anniversary,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create relationship")
		return
	}

	h.logger.Info("relationship created", "relationship_id", rel.ID)
	writeJSON(w, http.StatusCreated, rel)
}

type linkRequest struct {
	PartnerCode string `json:"partner_code"`
}

func (h *RelationshipHandler) Link(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rel, err := h.svc.LinkByCode(r.Context(), auth.UserID(r.Context()), req.PartnerCode)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to link partner")
		return
	}

	h.logger.Info("relationship linked", "relationship_id", rel.ID)
	h.broadcast(rel.ID, websocket.NewMessage(websocket.EntityRelationship, websocket.ActionLinked, rel.ID, nil))
	writeJSON(w, http.StatusOK, rel)
}
