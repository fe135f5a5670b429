package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorResponse represents the error structure returned by Gemini API
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type     string            `json:"@type"`
			Reason   string            `json:"reason,omitempty"`
			Domain   string            `json:"domain,omitempty"`
			Metadata map[string]string `json:"metadata,omitempty"`
		} `json:"details"`
	} `json:"error"`
}

// ErrorMessage extracts the upstream error message from a non-2xx body.
// It falls back to "HTTP <status>" when the body carries no message.
func ErrorMessage(status int, body []byte) string {
	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Sprintf("HTTP %d", status)
	}

	// Compress to single line by replacing newlines and multiple spaces
	msg := strings.Join(strings.Fields(apiErr.Error.Message), " ")

	var reasons []string
	for _, d := range apiErr.Error.Details {
		if d.Reason != "" {
			reasons = append(reasons, d.Reason)
		}
	}
	if len(reasons) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(reasons, ", "))
	}
	return msg
}
