package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestfab-as/quoting-api/internal/auth"
	"github.com/vestfab-as/quoting-api/internal/config"
	"go.uber.org/zap"
)

func newTestMiddleware() *auth.Middleware {
	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: testSecret},
	}
	return auth.NewMiddleware(cfg, zap.NewNop())
}

func validBearerToken(t *testing.T, roles ...string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   uuid.New().String(),
		"name":  "Kari Nordmann",
		"email": "kari@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	if len(roles) > 0 {
		roleClaims := make([]interface{}, len(roles))
		for i, r := range roles {
			roleClaims[i] = r
		}
		claims["roles"] = roleClaims
	}
	return signToken(t, testSecret, claims)
}

func TestMiddleware_Authenticate_ValidToken(t *testing.T) {
	m := newTestMiddleware()

	var gotUser *auth.UserContext
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	req.Header.Set("Authorization", "Bearer "+validBearerToken(t))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotUser)
	assert.Equal(t, "kari@example.com", gotUser.Email)
}

func TestMiddleware_Authenticate_MissingHeader(t *testing.T) {
	m := newTestMiddleware()

	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_Authenticate_MalformedHeader(t *testing.T) {
	m := newTestMiddleware()

	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_Authenticate_InvalidToken(t *testing.T) {
	m := newTestMiddleware()

	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_OptionalAuthenticate(t *testing.T) {
	m := newTestMiddleware()

	var gotUser *auth.UserContext
	var hasUser bool
	handler := m.OptionalAuthenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, hasUser = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Without a token the request passes through unauthenticated
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, hasUser)

	// With a valid token the user context is populated
	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+validBearerToken(t))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hasUser)
	assert.NotNil(t, gotUser)

	// With an invalid token the request still passes, unauthenticated
	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, hasUser)
}

func TestMiddleware_RequireRole(t *testing.T) {
	m := newTestMiddleware()

	protected := m.Authenticate(m.RequireRole("manager")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	// User with the role gets through
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+validBearerToken(t, "manager"))
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// User without the role is forbidden
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+validBearerToken(t, "sales"))
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
