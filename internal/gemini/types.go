package gemini

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Part is one unit of request or response content: a text string or inline
// binary media with a MIME type.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inline_data,omitempty"`
}

// Blob carries base64-encoded media bytes.
type Blob struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// TextPart wraps a plain string.
func TextPart(text string) Part {
	return Part{Text: text}
}

// DataPart wraps raw media bytes, encoding them for the wire.
func DataPart(mimeType string, data []byte) Part {
	return Part{InlineData: &Blob{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

// GenerationConfig mirrors the provider's sampling parameters.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type generateContentRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
}

// GenerateContentResponse is the decoded reply envelope.
type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated alternative.
type Candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// ExtractText resolves the reply text with ordered fallbacks: the joined
// text parts of the first candidate, then the first part rendered as JSON
// (covers non-text parts), then the raw response body. The envelope shape
// varies by model and mode, hence the tiers.
func (r *GenerateContentResponse) ExtractText(raw []byte) string {
	if len(r.Candidates) > 0 {
		parts := r.Candidates[0].Content.Parts

		var joined strings.Builder
		for _, p := range parts {
			joined.WriteString(p.Text)
		}
		if joined.Len() > 0 {
			return joined.String()
		}

		if len(parts) > 0 {
			if encoded, err := json.Marshal(parts[0]); err == nil {
				return string(encoded)
			}
		}
	}

	return strings.TrimSpace(string(raw))
}

// deltaText joins the text parts of a streaming chunk. No fallback tiers:
// a chunk without candidate text contributes nothing to the reply.
func (r *GenerateContentResponse) deltaText() string {
	if len(r.Candidates) == 0 {
		return ""
	}

	var joined strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		joined.WriteString(p.Text)
	}
	return joined.String()
}

// ModelInfo describes one available model, as surfaced by the model
// listing diagnostic.
type ModelInfo struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

type listModelsResponse struct {
	Models        []ModelInfo `json:"models"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}
