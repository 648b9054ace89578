package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okonev/gemchat/internal/config"
)

// ErrSynthesisUnavailable signals that the capability was not provisioned.
// Callers degrade to a user-visible notice, never a chat error.
var ErrSynthesisUnavailable = errors.New("speech synthesis is not available")

// Service converts reply text into MP3 audio through the translate TTS
// endpoint. Strictly best effort.
type Service struct {
	http *resty.Client
	cfg  config.SpeechConfig
}

// NewService builds the TTS client; availability is fixed at startup.
func NewService(cfg config.SpeechConfig) *Service {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	return &Service{http: httpClient, cfg: cfg}
}

// Enabled reports whether synthesis was provisioned.
func (s *Service) Enabled() bool {
	return s.cfg.Enabled
}

// Synthesize returns MP3 bytes for the text, or an error when the
// capability is off or the call fails.
func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !s.Enabled() {
		return nil, ErrSynthesisUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("tts text is empty")
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ie":     "UTF-8",
			"client": "tw-ob",
			"tl":     s.cfg.Language,
			"q":      text,
		}).
		Get("/translate_tts")
	if err != nil {
		return nil, fmt.Errorf("calling tts: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("tts request failed: status %d", resp.StatusCode())
	}

	audio := resp.Body()
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned no audio")
	}
	return audio, nil
}
