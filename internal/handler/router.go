package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/okonev/gemchat/internal/handler/chat"
	personaHandler "github.com/okonev/gemchat/internal/handler/persona"
	speechHandler "github.com/okonev/gemchat/internal/handler/speech"
	"github.com/okonev/gemchat/internal/handler/stream"
	middlewarePkg "github.com/okonev/gemchat/internal/middleware"
	personaModel "github.com/okonev/gemchat/internal/model/persona"
	chatService "github.com/okonev/gemchat/internal/service/chat"
	speechService "github.com/okonev/gemchat/internal/service/speech"
	"github.com/okonev/gemchat/pkg/utils"
)

// NewRouter wires HTTP routes to core services. The speak route is always
// mounted; an unprovisioned speech service answers it with a notice.
func NewRouter(personas personaModel.Store, chatSvc *chatService.Service, speechSvc *speechService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	streamH := stream.New(chatSvc)

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(personas).RegisterRoutes(api)
		chatHandler.New(chatSvc).RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamH.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})

		speechHandler.New(speechSvc, chatSvc).RegisterRoutes(api)
	})

	return r
}
