package ai

import (
	"context"
	"log"

	"github.com/okonev/gemchat/internal/config"
	"github.com/okonev/gemchat/internal/gemini"
	"github.com/okonev/gemchat/internal/model/chat"
)

// Service turns chat inputs into provider requests and resolves replies.
type Service struct {
	client *gemini.Client
	cfg    config.GeminiConfig
}

// NewService wires the provider client with its generation defaults.
func NewService(client *gemini.Client, cfg config.GeminiConfig) *Service {
	return &Service{client: client, cfg: cfg}
}

// Respond produces one complete reply for the supplied inputs.
func (s *Service) Respond(ctx context.Context, systemPrompt, text string, images []chat.Attachment, audio *chat.Attachment) (string, error) {
	model := SelectModel(s.cfg, images, audio)
	parts := BuildParts(text, images, audio)

	reply, err := s.client.GenerateContent(ctx, model, systemPrompt, parts)
	if err != nil {
		return "", err
	}

	log.Printf("[ai] generated response model=%s parts=%d length=%d", model, len(parts), len(reply))
	return reply, nil
}

// StreamRespond produces a reply for text-only input, invoking onDelta for
// every chunk, and returns the full concatenated text.
func (s *Service) StreamRespond(ctx context.Context, systemPrompt, text string, onDelta func(string)) (string, error) {
	parts := BuildParts(text, nil, nil)
	return s.client.StreamGenerateContent(ctx, s.cfg.TextModel, systemPrompt, parts, onDelta)
}
