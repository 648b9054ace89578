package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned before any network call when the credential
// was never provided. Fixing the environment and retrying is expected.
var ErrMissingAPIKey = errors.New("missing GEMINI_API_KEY environment variable")

// APIError describes a non-2xx provider response.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini api request failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini api request failed: status %d: %s", e.StatusCode, e.Message)
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func decodeAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var decoded apiErrorResponse
	if err := json.Unmarshal(body, &decoded); err == nil {
		apiErr.Status = decoded.Error.Status
		apiErr.Message = decoded.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	return apiErr
}
