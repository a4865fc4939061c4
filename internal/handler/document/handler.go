package document

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/learnix/backend/internal/embedding"
	model "github.com/learnix/backend/internal/model/document"
	ingestService "github.com/learnix/backend/internal/service/ingest"
	"github.com/learnix/backend/pkg/utils"
)

// Handler exposes document ingestion and listing over HTTP.
type Handler struct {
	ingest *ingestService.Service
}

// New creates the document handler.
func New(ingest *ingestService.Service) *Handler {
	return &Handler{ingest: ingest}
}

// RegisterRoutes attaches the document routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/documents", h.handleIngest)
	r.Get("/documents", h.handleList)
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Name == "" {
		payload.Name = "untitled"
	}

	doc, duplicate, err := h.ingest.Ingest(r.Context(), payload.Name, payload.Text)
	if err != nil {
		switch {
		case errors.Is(err, ingestService.ErrEmptyText):
			utils.RespondError(w, http.StatusBadRequest, "no text provided")
		case errors.Is(err, embedding.ErrRateLimited):
			utils.RespondError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, embedding.ErrProviderUnavailable):
			utils.RespondError(w, http.StatusBadGateway, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to ingest document")
		}
		return
	}

	if duplicate {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "duplicate",
			"message":  payload.Name + " already uploaded",
			"document": doc,
		})
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":   "new",
		"message":  payload.Name + " uploaded and indexed",
		"document": doc,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.ingest.Documents(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     len(docs),
	})
}
