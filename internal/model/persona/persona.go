package persona

// Persona is a named system-prompt preset shaping assistant behavior.
type Persona struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt"`
}

// DefaultID is applied to sessions created without an explicit persona.
const DefaultID = "general"

// Seed provides the built-in persona presets.
func Seed() []Persona {
	return []Persona{
		{
			ID:           "general",
			Name:         "General (default)",
			SystemPrompt: "You are a helpful, concise assistant.",
		},
		{
			ID:           "tutor",
			Name:         "Friendly Tutor",
			SystemPrompt: "You are a patient tutor who explains step-by-step with examples.",
		},
		{
			ID:           "interviewer",
			Name:         "Strict Interviewer",
			SystemPrompt: "You ask probing, concise questions and challenge assumptions.",
		},
		{
			ID:           "writer",
			Name:         "Creative Writer",
			SystemPrompt: "You write with flair, vivid imagery, but stay on brief.",
		},
		{
			ID:           "coder",
			Name:         "Code Assistant",
			SystemPrompt: "You are a senior developer; offer clear, runnable code and best practices.",
		},
	}
}
