package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/learnix/backend/internal/embedding"
	"github.com/learnix/backend/internal/service/ai"
	historyService "github.com/learnix/backend/internal/service/history"
	qaService "github.com/learnix/backend/internal/service/qa"
	"github.com/learnix/backend/internal/service/retrieval"
	"github.com/learnix/backend/pkg/utils"
)

const defaultHistoryLimit = 20

// Handler exposes the question-answering pipeline and the chat history
// over HTTP.
type Handler struct {
	history *historyService.Service
	qa      *qaService.Service
}

// New creates the chat handler.
func New(hist *historyService.Service, qa *qaService.Service) *Handler {
	return &Handler{
		history: hist,
		qa:      qa,
	}
}

// RegisterRoutes attaches the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ask", h.handleAsk)
	r.Get("/chat/history", h.handleGetHistory)
	r.Delete("/chat/history", h.handleClearHistory)
	r.Delete("/chat/message/{id}", h.handleDeleteMessage)
	r.Get("/chat/stats", h.handleStats)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Question string `json:"question"`
		TopK     int    `json:"topK"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.qa.Ask(r.Context(), payload.Question, payload.TopK)
	if err != nil {
		utils.RespondError(w, askErrorStatus(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	messages := h.history.List(r.Context(), limit)
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"history": messages,
		"count":   len(messages),
	})
}

func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	removed, err := h.history.Clear(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to clear chat history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "chat history cleared",
		"removed": removed,
	})
}

func (h *Handler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := h.history.Delete(r.Context(), id)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete message")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "message not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "message deleted"})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.history.Stats(r.Context()))
}

// askErrorStatus maps pipeline errors onto HTTP status codes.
func askErrorStatus(err error) int {
	switch {
	case errors.Is(err, qaService.ErrEmptyQuestion), errors.Is(err, retrieval.ErrInvalidTopK):
		return http.StatusBadRequest
	case errors.Is(err, ai.ErrRateLimited), errors.Is(err, embedding.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ai.ErrProviderUnavailable), errors.Is(err, embedding.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
