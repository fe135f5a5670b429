package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.BaseDelay)
	assert.Equal(t, 50, cfg.MinResponseLength)
	assert.Equal(t, 2000, cfg.MaxQueryLength)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadSize)
	assert.True(t, cfg.UsingDefaultSecret())

	require.Len(t, cfg.Models, 3)
	assert.Equal(t, "gemini-2.5-pro", cfg.Models[0].Name)
	assert.Equal(t, 180*time.Second, cfg.Models[0].Timeout)
	assert.Equal(t, 120*time.Second, cfg.Models[1].Timeout)
	assert.Equal(t, 90*time.Second, cfg.Models[2].Timeout)
	assert.Equal(t, GeminiBaseURL+"/gemini-1.5-flash:generateContent", cfg.Models[2].URL)

	require.Len(t, cfg.Keys, 3)
	for _, k := range cfg.Keys {
		assert.Empty(t, k.Key)
	}
}

func TestParseEnvAndFlags(t *testing.T) {
	env := envMap(map[string]string{
		"PORT":             "9000",
		"GEMINI_API_KEY_1": " key-one ",
		"GEMINI_API_KEY_3": "key-three",
		"AUTH_SECRET":      "s3cret",
		"ALLOWED_ORIGINS":  "https://a.example, ,https://b.example",
		"SIGNUP_CAPTCHA":   "true",
	})

	cfg, err := Parse([]string{"-debug", "-port", "9100", "token", "u1"}, env)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"token", "u1"}, cfg.Args)
	assert.Equal(t, "key-one", cfg.Keys[0].Key)
	assert.Equal(t, "Primary Key", cfg.Keys[0].Name)
	assert.Empty(t, cfg.Keys[1].Key)
	assert.Equal(t, "Backup Key", cfg.Keys[2].Name)
	assert.Equal(t, 3, cfg.Keys[2].Priority)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.SignupCaptcha)
	assert.False(t, cfg.UsingDefaultSecret())
}

func TestParseBadFlag(t *testing.T) {
	_, err := Parse([]string{"-no-such-flag"}, envMap(nil))
	assert.Error(t, err)
}

func TestModelsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	content := `
models:
  - name: gemini-test
    priority: 1
    timeout: 5s
  - name: gemini-other
    url: http://localhost:9999/generate
    priority: 2
keys:
  - key: abc
    priority: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Parse([]string{"-models", path}, envMap(nil))
	require.NoError(t, err)

	require.Len(t, cfg.Models, 2)
	assert.Equal(t, GenerateURL("gemini-test"), cfg.Models[0].URL)
	assert.Equal(t, 5*time.Second, cfg.Models[0].Timeout)
	assert.Equal(t, "http://localhost:9999/generate", cfg.Models[1].URL)
	assert.Equal(t, 120*time.Second, cfg.Models[1].Timeout)

	require.Len(t, cfg.Keys, 1)
	assert.Equal(t, "Key 1", cfg.Keys[0].Name)
	assert.Equal(t, "abc", cfg.Keys[0].Key)
}

func TestModelsFileErrors(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.applyModels([]byte("models: [::")))
	assert.Error(t, cfg.applyModels([]byte("models:\n  - priority: 1\n")))

	_, err := Parse([]string{"-models", filepath.Join(t.TempDir(), "missing.yaml")}, envMap(nil))
	assert.Error(t, err)
}
