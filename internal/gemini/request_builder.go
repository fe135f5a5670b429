package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// RequestBuilder builds outbound Gemini HTTP requests
type RequestBuilder interface {
	BuildGenerate(ctx context.Context, endpoint, key, prompt string) (*http.Request, error)
	BuildListModels(ctx context.Context, baseURL, key string) (*http.Request, error)
}

// DefaultRequestBuilder implements the RequestBuilder interface
type DefaultRequestBuilder struct {
	// GenerationConfig is attached to every generate request when set
	GenerationConfig *GenerationConfig
}

// NewRequestBuilder creates a new DefaultRequestBuilder
func NewRequestBuilder() *DefaultRequestBuilder {
	return &DefaultRequestBuilder{}
}

// BuildGenerate creates a POST endpoint?key=KEY carrying a single-part prompt
func (b *DefaultRequestBuilder) BuildGenerate(ctx context.Context, endpoint, key, prompt string) (*http.Request, error) {
	body := GenerateRequest{
		Contents:         []Content{{Parts: []Part{{Text: prompt}}}},
		GenerationConfig: b.GenerationConfig,
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL, err := withKey(endpoint, key)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// BuildListModels creates the GET used to probe whether a key is accepted
func (b *DefaultRequestBuilder) BuildListModels(ctx context.Context, baseURL, key string) (*http.Request, error) {
	reqURL, err := withKey(strings.TrimRight(baseURL, "/"), key)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return req, nil
}

func withKey(endpoint, key string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("key", key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
