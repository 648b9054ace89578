package chat

// Attachment carries one piece of binary media for an outgoing request.
type Attachment struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}
