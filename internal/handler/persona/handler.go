package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okonev/gemchat/internal/model/persona"
	"github.com/okonev/gemchat/pkg/utils"
)

// Handler serves the persona presets.
type Handler struct {
	personas persona.Store
}

// New creates a persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{personas: personas}
}

// RegisterRoutes mounts the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}
