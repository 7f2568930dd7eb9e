package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vestfab-as/quoting-api/internal/config"
	"github.com/vestfab-as/quoting-api/internal/http/middleware"
	"go.uber.org/zap"
)

func corsHandler(cfg *config.CORSConfig, environment string) http.Handler {
	return middleware.CORS(cfg, environment, zap.NewNop())(okHandler())
}

func corsRequest(handler http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCORS_ExplicitOrigins(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins: []string{"https://app.vestfab.no"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}
	handler := corsHandler(cfg, "production")

	rr := corsRequest(handler, "https://app.vestfab.no")
	assert.Equal(t, "https://app.vestfab.no", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = corsRequest(handler, "https://evil.example.com")
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardAllowsAnyOrigin(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}
	handler := corsHandler(cfg, "development")

	rr := corsRequest(handler, "https://anything.example.com")
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginsConfigured(t *testing.T) {
	cfg := &config.CORSConfig{AllowedMethods: []string{"GET"}}

	// Development defaults to allowing any origin
	dev := corsHandler(cfg, "development")
	rr := corsRequest(dev, "http://localhost:5173")
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	// Production with an empty list denies everything
	prod := corsHandler(cfg, "production")
	rr = corsRequest(prod, "https://app.vestfab.no")
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightRequest(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins: []string{"https://app.vestfab.no"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}
	handler := corsHandler(cfg, "production")

	req := httptest.NewRequest(http.MethodOptions, "/quotes", nil)
	req.Header.Set("Origin", "https://app.vestfab.no")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "https://app.vestfab.no", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "300", rr.Header().Get("Access-Control-Max-Age"))
}
