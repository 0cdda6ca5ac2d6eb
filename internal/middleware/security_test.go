package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecureHeaders(t *testing.T) {
	csp := ContentSecurityPolicy("https://cdn.example.com")
	handler := SecureHeaders(csp)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	tests := []struct {
		header string
		want   string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "SAMEORIGIN"},
		{"X-XSS-Protection", "0"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Cross-Origin-Opener-Policy", "same-origin"},
		{"Content-Security-Policy", csp},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := rr.Header().Get(tt.header)
			if got != tt.want {
				t.Errorf("%s: got %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestSecureHeadersWithoutCSP(t *testing.T) {
	handler := SecureHeaders("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("Content-Security-Policy"); got != "" {
		t.Errorf("expected no CSP header, got %q", got)
	}
}

func TestContentSecurityPolicy(t *testing.T) {
	csp := ContentSecurityPolicy("https://cdn.example.com")
	for _, want := range []string{
		"default-src 'self'",
		"script-src 'self' https://cdnjs.cloudflare.com",
		"img-src 'self' data: https://cdn.example.com",
		"object-src 'none'",
	} {
		if !strings.Contains(csp, want) {
			t.Errorf("CSP %q should contain %q", csp, want)
		}
	}

	if got := ContentSecurityPolicy(""); !strings.Contains(got, "img-src 'self' data:;") {
		t.Errorf("CSP without media origin: got %q", got)
	}
}
