package util

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskKey(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		first  int
		last   int
		expect string
	}{
		{"empty", "", 4, 4, ""},
		{"short key fully masked", "abcdef", 4, 4, "******"},
		{"long key", "AIzaSyABCDEFGHIJ1234", 4, 4, "AIza***1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, MaskKey(tt.key, tt.first, tt.last))
		})
	}
}

func TestPrintTableAlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintTable([]string{"Name", "Status"}, [][]string{
		{"Primary Key", "✅"},
		{"कुंजी", "ok"},
		{"short"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Name")
	assert.True(t, strings.HasPrefix(lines[1], "Primary Key  "))
	assert.Equal(t, "short", lines[3])
}

func TestPrintErrorTruncates(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintError(strings.Repeat("x", 500))
	assert.Contains(t, buf.String(), "...")
	assert.Less(t, len(buf.String()), 400)
}

func TestGetPublicIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.7"}`))
	}))
	defer srv.Close()

	old := PublicIPURL
	PublicIPURL = srv.URL
	defer func() { PublicIPURL = old }()

	ip, err := GetPublicIP(context.Background(), srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", ip)
}

func TestGetIPInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/bad") {
			w.Write([]byte(`{"status":"fail"}`))
			return
		}
		w.Write([]byte(`{"status":"success","country":"India","city":"Pune","isp":"Example"}`))
	}))
	defer srv.Close()

	old := IPInfoURL
	IPInfoURL = srv.URL + "/"
	defer func() { IPInfoURL = old }()

	info, err := GetIPInfo(context.Background(), srv.Client(), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "India", info.Country)

	_, err = GetIPInfo(context.Background(), srv.Client(), "bad")
	assert.Error(t, err)

	_, err = GetIPInfo(context.Background(), srv.Client(), "")
	assert.Error(t, err)
}
