package ai

import (
	"github.com/okonev/gemchat/internal/config"
	"github.com/okonev/gemchat/internal/gemini"
	"github.com/okonev/gemchat/internal/model/chat"
)

// FallbackGreeting substitutes for empty user text so the request parts
// list is never empty.
const FallbackGreeting = "Say hello!"

// Default MIME types applied when an attachment arrives untyped.
const (
	defaultImageMime = "image/png"
	defaultAudioMime = "audio/wav"
)

// SelectModel picks the multimodal variant whenever binary media rides
// along, otherwise the text-only variant.
func SelectModel(cfg config.GeminiConfig, images []chat.Attachment, audio *chat.Attachment) string {
	if len(images) > 0 || audio != nil {
		return cfg.MultimodalModel
	}
	return cfg.TextModel
}

// BuildParts assembles the ordered request parts: the text first (or the
// fallback greeting), then each image, then the audio clip. Pure and
// deterministic, no I/O.
func BuildParts(text string, images []chat.Attachment, audio *chat.Attachment) []gemini.Part {
	if text == "" {
		text = FallbackGreeting
	}

	parts := make([]gemini.Part, 0, len(images)+2)
	parts = append(parts, gemini.TextPart(text))

	for _, img := range images {
		mime := img.MimeType
		if mime == "" {
			mime = defaultImageMime
		}
		parts = append(parts, gemini.DataPart(mime, img.Data))
	}

	if audio != nil {
		mime := audio.MimeType
		if mime == "" {
			mime = defaultAudioMime
		}
		parts = append(parts, gemini.DataPart(mime, audio.Data))
	}

	return parts
}
