package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/learnix/backend/internal/handler/chat"
	documentHandler "github.com/learnix/backend/internal/handler/document"
	middlewarePkg "github.com/learnix/backend/internal/middleware"
	historyService "github.com/learnix/backend/internal/service/history"
	ingestService "github.com/learnix/backend/internal/service/ingest"
	qaService "github.com/learnix/backend/internal/service/qa"
	"github.com/learnix/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. mockMode is surfaced on
// the health endpoint so the frontend can tell mock answers apart from
// real ones.
func NewRouter(hist *historyService.Service, qa *qaService.Service, ingest *ingestService.Service, mockMode bool) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatH := chatHandler.New(hist, qa)
	wsH := chatHandler.NewWebSocketHandler(qa)
	documentH := documentHandler.New(ingest)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			mode := "production"
			if mockMode {
				mode = "mock"
			}
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status": "ok",
				"mode":   mode,
			})
		})

		chatH.RegisterRoutes(api)
		wsH.RegisterRoutes(api)
		documentH.RegisterRoutes(api)
	})

	return r
}
