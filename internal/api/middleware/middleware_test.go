package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		require.True(t, ok)
		role, ok := GetUserRole(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Seen-User", role)
		assert.Positive(t, userID)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		role     string
		status   int
		seenRole string
	}{
		{"missing header", "", "", http.StatusUnauthorized, ""},
		{"not a number", "abc", "", http.StatusUnauthorized, ""},
		{"negative id", "-4", "", http.StatusUnauthorized, ""},
		{"default role", "42", "", http.StatusNoContent, RoleCustomer},
		{"role is normalised", "42", " Admin ", http.StatusNoContent, RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(HeaderUserRole, tt.role)
			}
			rec := httptest.NewRecorder()

			Auth(echoUser(t)).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.seenRole, rec.Header().Get("X-Seen-User"))
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := Auth(RequireRole(RoleAdmin)(echoUser(t)))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderUserID, "7")
	req.Header.Set(HeaderUserRole, RoleStaff)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set(HeaderUserRole, RoleAdmin)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2, logger.NewNop())
	h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderUserID, userID)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("1"))
	assert.Equal(t, http.StatusOK, call("1"))
	assert.Equal(t, http.StatusTooManyRequests, call("1"))
	assert.Equal(t, http.StatusOK, call("2"), "limits are per client")
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(1, 1, logger.NewNop())
	start := time.Now()

	require.True(t, limiter.allow("user:1", start))
	for i := 1; i < limiterSweepEvery; i++ {
		limiter.allow("user:2", start.Add(limiterIdleTTL+time.Minute))
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	_, ok := limiter.clients["user:1"]
	assert.False(t, ok)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:51234"
	assert.Equal(t, "ip:10.0.0.5", clientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "ip:203.0.113.9", clientKey(req))

	req.Header.Set(HeaderUserID, "15")
	assert.Equal(t, "user:15", clientKey(req))
}
