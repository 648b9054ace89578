package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// PlainTranscript renders one "[time] ROLE: content" line per message.
func (s *Service) PlainTranscript(ctx context.Context, sessionID string) (string, error) {
	messages, err := s.Transcript(ctx, sessionID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", m.Time, strings.ToUpper(m.Role), m.Content))
	}
	return strings.Join(lines, "\n"), nil
}

// JSONTranscript renders the history as a pretty-printed UTF-8 array with
// non-ASCII characters preserved literally.
func (s *Service) JSONTranscript(ctx context.Context, sessionID string) ([]byte, error) {
	messages, err := s.Transcript(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(messages); err != nil {
		return nil, fmt.Errorf("encoding transcript: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
