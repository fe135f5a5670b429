package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNoCandidate is returned when a 2xx body has no candidate text
var ErrNoCandidate = errors.New("response has no candidate text")

// maxBodySize caps how much of an upstream body is read
const maxBodySize = 8 << 20

// ReadBody drains and closes resp.Body
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// ExtractText returns candidates[0].content.parts[0].text.
// A body that is not JSON is reported as a decode error; a body without
// text yields ErrNoCandidate.
func ExtractText(body []byte) (string, error) {
	var resp GenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoCandidate
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
