package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"

	chatService "github.com/okonev/gemchat/internal/service/chat"
	"github.com/okonev/gemchat/pkg/utils"
)

// Handler streams text-only replies over Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a stream handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// StreamResponse is one SSE frame.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest runs one streaming send cycle for a session. Provider
// failures still land in the transcript as an "Error: ..." assistant turn;
// only pre-send guard failures surface as SSE error events.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
	})

	userMsg, assistantMsg, err := h.chatSvc.StreamSend(ctx, sessionID, userMessage, func(delta string) {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "delta",
			SessionID: sessionID,
			Content:   delta,
		})
	})
	if err != nil {
		h.sendSSE(w, flusher, StreamResponse{Event: "error", Error: err.Error()})
		return err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "user",
		SessionID: sessionID,
		Content:   userMsg.Content,
	})
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   assistantMsg.Content,
	})
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed response for session=%s", sessionID)
	return nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}
