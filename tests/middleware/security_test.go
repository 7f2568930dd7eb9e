package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vestfab-as/quoting-api/internal/config"
	"github.com/vestfab-as/quoting-api/internal/http/middleware"
)

func securityHandler(cfg *config.SecurityConfig) http.Handler {
	return middleware.SecurityHeaders(cfg)(okHandler())
}

func securityRequest(handler http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestSecurityHeaders_AllConfigured(t *testing.T) {
	cfg := &config.SecurityConfig{
		ContentTypeNosniff:    true,
		FrameOptions:          "DENY",
		XSSProtection:         "1; mode=block",
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "camera=(), microphone=()",
	}

	rr := securityRequest(securityHandler(cfg))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", rr.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "default-src 'self'", rr.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", rr.Header().Get("Referrer-Policy"))
	assert.Equal(t, "camera=(), microphone=()", rr.Header().Get("Permissions-Policy"))
}

func TestSecurityHeaders_EmptyConfigSetsNothing(t *testing.T) {
	rr := securityRequest(securityHandler(&config.SecurityConfig{}))

	for _, header := range []string{
		"X-Content-Type-Options",
		"X-Frame-Options",
		"Content-Security-Policy",
		"Strict-Transport-Security",
	} {
		assert.Empty(t, rr.Header().Get(header), header)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SecurityConfig
		want string
	}{
		{
			name: "max age only",
			cfg:  config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 31536000},
			want: "max-age=31536000",
		},
		{
			name: "with subdomains",
			cfg:  config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 31536000, HSTSIncludeSubdomains: true},
			want: "max-age=31536000; includeSubDomains",
		},
		{
			name: "with preload",
			cfg:  config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 63072000, HSTSIncludeSubdomains: true, HSTSPreload: true},
			want: "max-age=63072000; includeSubDomains; preload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := securityRequest(securityHandler(&tt.cfg))
			assert.Equal(t, tt.want, rr.Header().Get("Strict-Transport-Security"))
		})
	}
}

func TestSecurityHeaders_StripsServerHeaders(t *testing.T) {
	handler := middleware.SecurityHeaders(&config.SecurityConfig{ContentTypeNosniff: true})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rr := securityRequest(handler)
	assert.Empty(t, rr.Header().Get("X-Powered-By"))
	assert.Empty(t, rr.Header().Get("Server"))
}
