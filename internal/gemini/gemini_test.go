package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGenerate(t *testing.T) {
	b := NewRequestBuilder()
	req, err := b.BuildGenerate(context.Background(),
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-pro:generateContent",
		"secret-key", "What is an FIR?")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "secret-key", req.URL.Query().Get("key"))
	assert.Equal(t, "/v1beta/models/gemini-1.5-pro:generateContent", req.URL.Path)

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)

	var body GenerateRequest
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Len(t, body.Contents, 1)
	require.Len(t, body.Contents[0].Parts, 1)
	assert.Equal(t, "What is an FIR?", body.Contents[0].Parts[0].Text)
	assert.NotContains(t, string(raw), "generationConfig")
}

func TestBuildGenerateKeepsExistingQuery(t *testing.T) {
	req, err := NewRequestBuilder().BuildGenerate(context.Background(), "http://localhost/gen?alt=json", "k", "p")
	require.NoError(t, err)
	assert.Equal(t, "json", req.URL.Query().Get("alt"))
	assert.Equal(t, "k", req.URL.Query().Get("key"))
}

func TestBuildListModels(t *testing.T) {
	req, err := NewRequestBuilder().BuildListModels(context.Background(), "https://example.test/v1beta/models/", "abc")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "https://example.test/v1beta/models?key=abc", req.URL.String())
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
		decode  bool
	}{
		{
			name: "first candidate first part",
			body: `{"candidates":[{"content":{"parts":[{"text":"hello"},{"text":"ignored"}]}},{"content":{"parts":[{"text":"second"}]}}]}`,
			want: "hello",
		},
		{name: "no candidates", body: `{"candidates":[]}`, wantErr: ErrNoCandidate},
		{name: "no parts", body: `{"candidates":[{"content":{"parts":[]}}]}`, wantErr: ErrNoCandidate},
		{name: "not json", body: `<html>`, decode: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText([]byte(tt.body))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.decode:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "decode")
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "message",
			status: 429,
			body:   `{"error":{"code":429,"message":"Resource has been exhausted\n (e.g. check quota).","status":"RESOURCE_EXHAUSTED"}}`,
			want:   "Resource has been exhausted (e.g. check quota).",
		},
		{
			name:   "message with reasons",
			status: 400,
			body:   `{"error":{"code":400,"message":"API key not valid.","details":[{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"API_KEY_INVALID"}]}}`,
			want:   "API key not valid. (API_KEY_INVALID)",
		},
		{name: "empty body", status: 503, body: "", want: "HTTP 503"},
		{name: "html body", status: 502, body: "<html>bad gateway</html>", want: "HTTP 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.status, []byte(tt.body)))
		})
	}
}

func TestReadBody(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader("abc"))}
	body, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(body))
}

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name    string
		proxy   string
		wantErr bool
	}{
		{name: "direct", proxy: ""},
		{name: "http proxy", proxy: "http://127.0.0.1:8080"},
		{name: "socks5 proxy", proxy: "socks5://127.0.0.1:1080"},
		{name: "bad scheme", proxy: "ftp://127.0.0.1:21", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewHTTPClient(tt.proxy)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tr, ok := c.Transport.(*http.Transport)
			require.True(t, ok)
			if tt.proxy == "" {
				return
			}
			if strings.HasPrefix(tt.proxy, "socks") {
				assert.Nil(t, tr.Proxy)
				assert.NotNil(t, tr.DialContext)
			} else {
				assert.NotNil(t, tr.Proxy)
			}
		})
	}
}
