package speech

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatService "github.com/okonev/gemchat/internal/service/chat"
	speechService "github.com/okonev/gemchat/internal/service/speech"
	"github.com/okonev/gemchat/pkg/utils"
)

// Handler plays back the last assistant reply as audio.
type Handler struct {
	speechSvc *speechService.Service
	chatSvc   *chatService.Service
}

// New creates a speech handler.
func New(speechSvc *speechService.Service, chatSvc *chatService.Service) *Handler {
	return &Handler{speechSvc: speechSvc, chatSvc: chatSvc}
}

// RegisterRoutes mounts the speech routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session/{sessionID}/speak", h.handleSpeakLastReply)
}

func (h *Handler) handleSpeakLastReply(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	last, err := h.chatSvc.LastAssistantReply(r.Context(), sessionID)
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, chatService.ErrNoAssistantReply) {
			status = http.StatusBadRequest
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	audio, err := h.speechSvc.Synthesize(r.Context(), last.Content)
	if err != nil {
		// Synthesis failure never touches chat state; it degrades to a notice.
		log.Printf("[tts] synthesis failed session=%s: %v", sessionID, err)
		message := "could not synthesize speech"
		if errors.Is(err, speechService.ErrSynthesisUnavailable) {
			message = err.Error()
		}
		utils.RespondError(w, http.StatusServiceUnavailable, message)
		return
	}

	utils.RespondBytes(w, "audio/mpeg", audio)
}
