package chat

// TimeLayout is the display format for message timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one immutable chat turn. Attachment bytes are never stored
// here, only the textual preview recorded at send time.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Time    string `json:"time"`
}
