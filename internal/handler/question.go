package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/lovejourney/internal/auth"
	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/model"
	"github.com/dukerupert/lovejourney/internal/websocket"
)

type QuestionHandler struct {
	svc    *couple.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewQuestionHandler(svc *couple.Service, hub *websocket.Hub, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{svc: svc, hub: hub, logger: logger}
}

func (h *QuestionHandler) broadcast(relationshipID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(relationshipID, msg)
	}
}

func (h *QuestionHandler) ListForDate(w http.ResponseWriter, r *http.Request) {
	questions, err := h.svc.QuestionsForDate(r.Context(), auth.UserID(r.Context()), r.PathValue("date"))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list questions")
		return
	}
	if questions == nil {
		questions = []model.DailyQuestion{}
	}
	writeJSON(w, http.StatusOK, questions)
}

type questionRequest struct {
	Question string `json:"question"`
	Date     string `json:"date"`
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == "" {
		req.Date = h.svc.Today()
	}

	q, err := h.svc.CreateQuestion(r.Context(), auth.UserID(r.Context()), req.Question, req.Date)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create question")
		return
	}

	h.broadcast(q.RelationshipID, websocket.NewMessage(websocket.EntityQuestion, websocket.ActionCreated, q.ID, nil))
	writeJSON(w, http.StatusCreated, q)
}

type answerRequest struct {
	Answer string           `json:"answer"`
	Role   model.AnswerRole `json:"role"`
}

func (h *QuestionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Answer(r.Context(), auth.UserID(r.Context()), id, req.Role, req.Answer)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to save answer")
		return
	}

	relID := res.Question.RelationshipID
	h.broadcast(relID, websocket.NewMessage(websocket.EntityQuestion, websocket.ActionAnswered, id,
		map[string]any{"outcome": res.Outcome}))
	if res.Next != nil {
		h.logger.Info("next question created", "relationship_id", relID, "question_id", res.Next.ID)
		h.broadcast(relID, websocket.NewMessage(websocket.EntityQuestion, websocket.ActionCreated, res.Next.ID, nil))
	}
	writeJSON(w, http.StatusOK, res)
}
