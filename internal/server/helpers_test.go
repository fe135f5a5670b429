package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/auth"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/blob"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/dispatch"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/lawyers"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/store"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/config"
)

const testSecret = "test-secret"

// fakeAnalyzer records prompts and replays a canned outcome
type fakeAnalyzer struct {
	mu      sync.Mutex
	prompts []string
	result  *dispatch.Result
	err     error
	quota   []dispatch.QuotaStatus
}

func (f *fakeAnalyzer) Dispatch(_ context.Context, prompt string) (*dispatch.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.result, f.err
}

func (f *fakeAnalyzer) Models() []dispatch.ModelInfo {
	return []dispatch.ModelInfo{
		{Name: "gemini-2.5-pro", Priority: 1, Timeout: 180 * time.Second, Description: "best"},
		{Name: "gemini-1.5-flash", Priority: 2, Timeout: 90 * time.Second, Description: "fast"},
	}
}

func (f *fakeAnalyzer) Credentials() []dispatch.CredentialStats {
	return []dispatch.CredentialStats{{
		Name:         "Primary Key",
		Priority:     1,
		UsageCount:   3,
		SuccessCount: 2,
		ErrorCount:   1,
		LastUsed:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}}
}

func (f *fakeAnalyzer) CheckQuota(context.Context) []dispatch.QuotaStatus {
	return f.quota
}

func (f *fakeAnalyzer) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeRecords struct {
	mu      sync.Mutex
	queries []store.Query
	uploads []store.Upload
	err     error
}

func (f *fakeRecords) SaveQuery(_ context.Context, q *store.Query) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.queries = append(f.queries, *q)
	return nil
}

func (f *fakeRecords) SaveUpload(_ context.Context, u *store.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.uploads = append(f.uploads, *u)
	return nil
}

// mockDoer answers outbound requests by exact URL
type mockDoer struct {
	responses map[string]string
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	body, ok := m.responses[req.URL.String()]
	if !ok {
		return &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	}
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString(body))}, nil
}

type testEnv struct {
	dir      string
	cfg      *config.Config
	analyzer *fakeAnalyzer
	records  *fakeRecords
	blobs    *blob.FSStore
	issuer   *auth.Issuer
	deps     Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	env := map[string]string{
		"AUTH_SECRET":     testSecret,
		"FRONTEND_DIR":    filepath.Join(dir, "frontend"),
		"ALLOWED_ORIGINS": "http://localhost:3000,*.vercel.app",
	}
	cfg, err := config.Parse(nil, func(k string) string { return env[k] })
	require.NoError(t, err)

	users, err := store.NewFileStore(filepath.Join(dir, "data", "users.json"))
	require.NoError(t, err)
	blobs, err := blob.NewFSStore(filepath.Join(dir, "uploads"), "http://localhost:3000", testSecret)
	require.NoError(t, err)

	e := &testEnv{
		dir:      dir,
		cfg:      cfg,
		analyzer: &fakeAnalyzer{},
		records:  &fakeRecords{},
		blobs:    blobs,
		issuer:   auth.NewIssuer(testSecret, time.Hour),
	}
	e.deps = Deps{
		Analyzer:   e.analyzer,
		Users:      users,
		Records:    e.records,
		Blobs:      blobs,
		Tokens:     e.issuer,
		Lawyers:    lawyers.NewDirectory(filepath.Join(dir, "data", "lawyers.json")),
		HTTPClient: &mockDoer{},
	}
	return e
}

func (e *testEnv) server() *Server {
	return New(e.cfg, e.deps)
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := e.issuer.Issue(userID, userID+"@example.com")
	require.NoError(t, err)
	return tok
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
