package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/ui/centres", "/ui/centres"},
		{"/ui/centres/42", "/ui/centres/{id}"},
		{"/ui/utilisateurs/7/token", "/ui/utilisateurs/{id}/token"},
		{"/static/js/app.js", "/static/*"},
		{"/api/v1/search", "/api/v1/search"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.path, got, tt.want)
		}
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "path=/missing") {
		t.Errorf("404 должен логироваться на WARN: %s", out)
	}
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "bytes=2") {
		t.Errorf("запрос health-проверки должен логироваться на DEBUG: %s", out)
	}
}
