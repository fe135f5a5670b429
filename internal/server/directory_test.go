package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/util"
)

const lawyersJSON = `[
  {"id": "1", "name": "Adv. Meera Iyer", "specialization": "Criminal Law", "experience": 12, "consultationFee": 2000, "rating": 4.8, "casesHandled": 340, "expertise": ["Bail", "FIR quashing"]},
  {"id": "2", "name": "Adv. Rohan Das", "specialization": "Family Law", "experience": 8, "consultationFee": 1500, "rating": 4.5, "casesHandled": 210, "expertise": ["Divorce", "Custody"]}
]`

func TestLawyerRoutes(t *testing.T) {
	e := newTestEnv(t)
	s := e.server()

	w := serve(s, jsonRequest(http.MethodGet, "/api/lawyers", ""))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "No lawyers available yet", body["message"])
	assert.Empty(t, body["lawyers"])

	require.NoError(t, os.WriteFile(filepath.Join(e.dir, "data", "lawyers.json"), []byte(lawyersJSON), 0o600))

	tests := []struct {
		name   string
		path   string
		status int
		check  func(t *testing.T, body map[string]interface{})
	}{
		{"all", "/api/lawyers", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, float64(2), body["count"])
		}},
		{"by specialization", "/api/lawyers/specialization/criminal", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, float64(1), body["count"])
			assert.Equal(t, "criminal", body["specialization"])
		}},
		{"by expertise", "/api/lawyers/specialization/custody", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			lawyers := body["lawyers"].([]interface{})
			require.Len(t, lawyers, 1)
			assert.Equal(t, "2", lawyers[0].(map[string]interface{})["id"])
		}},
		{"no match", "/api/lawyers/specialization/tax", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, float64(0), body["count"])
			assert.Equal(t, []interface{}{}, body["lawyers"])
		}},
		{"by id", "/api/lawyers/1", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, "Adv. Meera Iyer", body["lawyer"].(map[string]interface{})["name"])
		}},
		{"unknown id", "/api/lawyers/99", http.StatusNotFound, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, "Lawyer not found", body["error"])
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, jsonRequest(http.MethodGet, tt.path, ""))
			assert.Equal(t, tt.status, w.Code)
			tt.check(t, decode(t, w))
		})
	}
}

func TestDebugIP(t *testing.T) {
	e := newTestEnv(t)
	lookup := util.IPInfoURL + "203.0.113.7"
	e.deps.HTTPClient = &mockDoer{responses: map[string]string{
		util.PublicIPURL: `{"ip": "203.0.113.7"}`,
		lookup:           `{"status": "success", "country": "India", "regionName": "Karnataka", "city": "Bengaluru", "isp": "Example ISP"}`,
	}}

	w := serve(e.server(), jsonRequest(http.MethodGet, "/debug/ip", ""))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "203.0.113.7", body["serverIP"])
	assert.Equal(t, "Bengaluru", body["location"].(map[string]interface{})["city"])

	e.deps.HTTPClient = &mockDoer{}
	w = serve(e.server(), jsonRequest(http.MethodGet, "/debug/ip", ""))
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Could not fetch server IP", body["error"])
	assert.NotContains(t, body, "serverIP")
}

func TestPagesAndStatic(t *testing.T) {
	e := newTestEnv(t)
	front := e.cfg.FrontendDir
	require.NoError(t, os.MkdirAll(filepath.Join(front, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(front, "index.html"), []byte("<h1>home</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(front, "results.html"), []byte("<h1>results</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(front, "css", "app.css"), []byte("body{}"), 0o600))
	s := e.server()

	w := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<h1>home</h1>", w.Body.String())

	w = serve(s, httptest.NewRequest(http.MethodGet, "/results", nil))
	assert.Equal(t, "<h1>results</h1>", w.Body.String())

	w = serve(s, httptest.NewRequest(http.MethodGet, "/css/app.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body{}", w.Body.String())

	for _, tt := range []struct{ method, path string }{
		{http.MethodGet, "/missing.js"},
		{http.MethodPost, "/api/nope"},
		{http.MethodGet, "/../../etc/passwd"},
	} {
		w = serve(s, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, tt.path)
		body := decode(t, w)
		assert.Equal(t, "API route not found", body["error"])
		assert.Equal(t, tt.method, body["method"])
		assert.NotEmpty(t, body["availableRoutes"])
	}
}

func TestCORS(t *testing.T) {
	e := newTestEnv(t)
	s := e.server()

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:3000", true},
		{"https://preview-123.vercel.app", true},
		{"http://preview-123.vercel.app", false},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := serve(s, req)

			if tt.allowed {
				assert.Equal(t, http.StatusNoContent, w.Code)
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Equal(t, http.StatusForbidden, w.Code)
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		origin, allowed string
		want            bool
	}{
		{"https://a.example", "https://a.example", true},
		{"https://a.example", "https://a.example/", true},
		{"https://A.example", "https://a.example", true},
		{"https://b.example", "https://a.example", false},
		{"https://x.onrender.com", "*.onrender.com", true},
		{"https://onrender.com", "*.onrender.com", false},
		{"https://x.onrender.com.evil.io", "*.onrender.com", false},
		{"anything", "*", true},
		{"", "*", false},
		{"https://a.example", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isOriginAllowed(tt.origin, tt.allowed), "%s vs %s", tt.origin, tt.allowed)
	}
}

func TestStartAndShutdown(t *testing.T) {
	e := newTestEnv(t)
	e.cfg.Port = 0
	s := e.server()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case <-s.Ready():
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server never became ready")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
