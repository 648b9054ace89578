package chat

import "time"

// Session captures a transient in-memory conversation and the system prompt
// that rides on its next request.
type Session struct {
	ID           string    `json:"id"`
	PersonaID    string    `json:"personaId"`
	ActivePrompt string    `json:"activePrompt"`
	CreatedAt    time.Time `json:"createdAt"`
}
