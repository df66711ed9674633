package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func principalHandler(t *testing.T, want Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		require.True(t, ok)
		assert.Equal(t, want, p)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	token, err := GenerateToken(7, "alice", secret, time.Hour)
	require.NoError(t, err)
	h := AuthMiddleware(secret)(principalHandler(t, Principal{UserID: 7, Login: "alice"}))

	for name, tc := range map[string]struct {
		header string
		query  string
		want   int
	}{
		"bearer":       {header: "Bearer " + token, want: http.StatusNoContent},
		"query token":  {query: "?access_token=" + token, want: http.StatusNoContent},
		"missing":      {want: http.StatusUnauthorized},
		"not bearer":   {header: "Basic abc", want: http.StatusUnauthorized},
		"wrong secret": {header: "Bearer " + mustToken(t, "other"), want: http.StatusUnauthorized},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/account"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func mustToken(t *testing.T, key string) string {
	tok, err := GenerateToken(7, "alice", key, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestExpiredToken(t *testing.T) {
	tok, err := GenerateToken(1, "bob", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(tok, secret)
	assert.Error(t, err)
}

func TestAPIKeyMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	APIKeyMiddleware("")(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h := APIKeyMiddleware("k1")(ok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "k1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/authenticate", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000"))

	now = now.Add(45 * time.Second)
	req := httptest.NewRequest(http.MethodPost, "/api/authenticate", nil)
	req.RemoteAddr = "10.0.0.1:1004"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "15", rec.Header().Get("Retry-After"))

	now = now.Add(16 * time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1003"))
	assert.NotContains(t, rl.clients, "10.0.0.2")
}

func TestRequestIDAndCORS(t *testing.T) {
	h := CORS([]string{"http://app.test"}, []string{"X-Total-Count"})(RequestID(SecurityHeaders(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)))

	req := httptest.NewRequest(http.MethodGet, "/api/points", nil)
	req.Header.Set("Origin", "http://app.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Total-Count", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	pre := httptest.NewRequest(http.MethodOptions, "/api/points/1", nil)
	pre.Header.Set("Origin", "http://app.test")
	pre.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, pre)
	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}
