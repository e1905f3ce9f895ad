package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cognifloe/control-plane/internal/api/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	auth := middleware.NewAPIKeyAuth([]string{"", "  "})
	if auth.Enabled() {
		t.Error("Enabled() = true with only blank keys, want false")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", nil)
	w := httptest.NewRecorder()
	auth.Middleware(okHandler()).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	handler := middleware.NewAPIKeyAuth([]string{"key-1", "key-2"}).Middleware(okHandler())

	tests := []struct {
		name   string
		path   string
		header string
		value  string
		want   int
	}{
		{"bearer", "/api/v1/workflows", "Authorization", "Bearer key-1", http.StatusOK},
		{"x-api-key", "/api/v1/workflows", "X-API-Key", "key-2", http.StatusOK},
		{"wrong key", "/api/v1/workflows", "Authorization", "Bearer nope", http.StatusUnauthorized},
		{"missing key", "/api/v1/workflows", "", "", http.StatusUnauthorized},
		{"health is public", "/health", "", "", http.StatusOK},
		{"version is public", "/version", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
