package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okonev/gemchat/internal/model/chat"
	chatService "github.com/okonev/gemchat/internal/service/chat"
	"github.com/okonev/gemchat/pkg/utils"
)

// Handler serves session lifecycle, sends, transcript and export routes.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}", h.handleGetSession)
	r.Post("/session/{sessionID}/persona", h.handleSelectPersona)
	r.Post("/session/{sessionID}/prompt", h.handleSetPrompt)
	r.Post("/session/{sessionID}/messages", h.handleSendMessage)
	r.Get("/session/{sessionID}/transcript", h.handleTranscript)
	r.Delete("/session/{sessionID}/messages", h.handleClearMessages)
	r.Get("/session/{sessionID}/export/text", h.handleExportText)
	r.Get("/session/{sessionID}/export/json", h.handleExportJSON)
}

// attachmentPayload is the wire form of an attachment; Data arrives base64
// encoded and decodes into raw bytes.
type attachmentPayload struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

func (p *attachmentPayload) toModel() chat.Attachment {
	return chat.Attachment{MimeType: p.MimeType, Data: p.Data}
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}

	// An empty or absent body is fine, the default persona applies.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		payload.PersonaID = ""
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.PersonaID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSelectPersona(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.PersonaID == "" {
		utils.RespondError(w, http.StatusBadRequest, "personaId is required")
		return
	}

	session, err := h.chatSvc.SelectPersona(r.Context(), chi.URLParam(r, "sessionID"), payload.PersonaID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSetPrompt(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.SetActivePrompt(r.Context(), chi.URLParam(r, "sessionID"), payload.Prompt)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text   string              `json:"text"`
		Images []attachmentPayload `json:"images"`
		Audio  *attachmentPayload  `json:"audio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	images := make([]chat.Attachment, 0, len(payload.Images))
	for i := range payload.Images {
		images = append(images, payload.Images[i].toModel())
	}
	var audio *chat.Attachment
	if payload.Audio != nil {
		clip := payload.Audio.toModel()
		audio = &clip
	}

	userMsg, assistantMsg, err := h.chatSvc.Send(r.Context(), chi.URLParam(r, "sessionID"), payload.Text, images, audio)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]chat.Message{
		"user":      userMsg,
		"assistant": assistantMsg,
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.Transcript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.ClearMessages(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) handleExportText(w http.ResponseWriter, r *http.Request) {
	text, err := h.chatSvc.PlainTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="chat_history.txt"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

func (h *Handler) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := h.chatSvc.JSONTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="chat_history.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrPersonaNotFound):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatService.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatService.ErrSendInFlight):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
