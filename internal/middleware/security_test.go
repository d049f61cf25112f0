package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/Forum_Backend/internal/auth"
	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/middleware"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils/ratelimit"
)

// MockBanChecker is a mock implementation of middleware.BanChecker
type MockBanChecker struct {
	mock.Mock
}

func (m *MockBanChecker) CheckBan(ctx context.Context, query models.BanQuery) error {
	args := m.Called(ctx, query)
	return args.Error(0)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	middleware.SecurityHeaders()(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rr.Header().Get("Referrer-Policy"))
	assert.Equal(t, "default-src 'self'", rr.Header().Get("Content-Security-Policy"))
}

func TestBanGuard(t *testing.T) {
	banned := utils.NewBannedError("Go away", map[string]any{"check_type": "ip"})

	tests := []struct {
		name           string
		path           string
		identity       *auth.Identity
		expectQuery    *models.BanQuery
		checkErr       error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Anonymous client not banned",
			path:           "/api/users/me",
			expectQuery:    &models.BanQuery{IP: "192.0.2.10"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Banned IP",
			path:           "/api/users/me",
			expectQuery:    &models.BanQuery{IP: "192.0.2.10"},
			checkErr:       banned,
			expectedStatus: http.StatusForbidden,
			expectedCode:   constants.CodeBanned,
		},
		{
			name:           "Authenticated user tested by username",
			path:           "/api/users/me",
			identity:       &auth.Identity{UserID: 3, Username: "bob"},
			expectQuery:    &models.BanQuery{Username: "bob", IP: "192.0.2.10"},
			checkErr:       banned,
			expectedStatus: http.StatusForbidden,
			expectedCode:   constants.CodeBanned,
		},
		{
			name:           "Staff are never blocked",
			path:           "/api/bans",
			identity:       &auth.Identity{UserID: 1, Username: "admin", IsStaff: true},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Health check exempted",
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Lookup failure",
			path:           "/api/users/me",
			expectQuery:    &models.BanQuery{IP: "192.0.2.10"},
			checkErr:       errors.New("db down"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   constants.CodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(MockBanChecker)
			if tt.expectQuery != nil {
				checker.On("CheckBan", mock.Anything, *tt.expectQuery).Return(tt.checkErr)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.RemoteAddr = "192.0.2.10:5000"
			if tt.identity != nil {
				req = req.WithContext(auth.WithIdentity(req.Context(), tt.identity))
			}
			rr := httptest.NewRecorder()

			middleware.BanGuard(checker)(okHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedCode != "" {
				var resp utils.Response
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.expectedCode, resp.Error.Code)
			}
			if tt.expectQuery == nil {
				checker.AssertNotCalled(t, "CheckBan", mock.Anything, mock.Anything)
			} else {
				checker.AssertExpectations(t)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	store := ratelimit.NewStore(ratelimit.Rate{RequestsPerSecond: 0, Burst: 2}, time.Minute)
	handler := middleware.RateLimit(store, constants.RateLimitCategoryLogin)(okHandler)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1").Code)
	assert.Equal(t, http.StatusOK, send("198.51.100.1").Code)

	rr := send("198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, constants.CodeRateLimited, resp.Error.Code)

	assert.Equal(t, http.StatusOK, send("198.51.100.2").Code)
}

func TestBanGuard_ForgedForwardingHeaders(t *testing.T) {
	banned := utils.NewBannedError("Go away", map[string]any{"check_type": "ip"})
	checker := new(MockBanChecker)
	checker.On("CheckBan", mock.Anything, models.BanQuery{IP: "203.0.113.7"}).Return(banned)

	// no trusted proxies: the headers must not replace the socket address
	handler := middleware.RealIP(nil)(middleware.BanGuard(checker)(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.RemoteAddr = "203.0.113.7:41000"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	req.Header.Set("X-Real-IP", "1.2.3.4")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	checker.AssertExpectations(t)
}

func TestRateLimit_IgnoresForgedForwardedFor(t *testing.T) {
	store := ratelimit.NewStore(ratelimit.Rate{RequestsPerSecond: 0, Burst: 1}, time.Minute)
	handler := middleware.RealIP(nil)(middleware.RateLimit(store, constants.RateLimitCategoryLogin)(okHandler))

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "198.51.100.1:1234"
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.2"))
}
