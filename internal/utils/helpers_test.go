package utils_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"user@example.com", "u**r@example.com"},
		{"ab@example.com", "ab@example.com"},
		{"not-an-email", "not-an-email"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.MaskEmail(tt.email))
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", utils.TruncateString("short", 10))
	assert.Equal(t, "abcd...", utils.TruncateString("abcdefghij", 7))
	assert.Equal(t, "ab", utils.TruncateString("abcdef", 2))
}

func TestClientIP(t *testing.T) {
	t.Run("Forwarding headers are not trusted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "203.0.113.7:41000"
		req.Header.Set("X-Forwarded-For", "1.2.3.4")
		req.Header.Set("X-Real-IP", "1.2.3.4")
		assert.Equal(t, "203.0.113.7", utils.ClientIP(req))
	})

	t.Run("RemoteAddr with port", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		assert.Equal(t, "192.0.2.1", utils.ClientIP(req))
	})

	t.Run("RemoteAddr without port", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.0.2.1"
		assert.Equal(t, "192.0.2.1", utils.ClientIP(req))
	})
}

func TestContainsString(t *testing.T) {
	assert.True(t, utils.ContainsString([]string{"a", "b"}, "b"))
	assert.False(t, utils.ContainsString(nil, "b"))
}
