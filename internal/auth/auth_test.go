package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123"

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens(secret, time.Hour)

	raw, err := tokens.Issue(7, "jake@example.com", "jake")
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "jake", claims.Username)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.Id)
}

func TestParseRejects(t *testing.T) {
	tokens := NewTokens(secret, time.Hour)
	raw, err := tokens.Issue(7, "jake@example.com", "jake")
	require.NoError(t, err)

	_, err = NewTokens("another-secret-of-20", time.Hour).Parse(raw)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = tokens.Parse("garbage")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired := NewTokens(secret, time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Issue(7, "jake@example.com", "jake")
	require.NoError(t, err)

	_, err = tokens.Parse(old)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

type captureHandler struct {
	called bool
	userID int64
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.userID = UserID(r.Context())
}

func TestRequired(t *testing.T) {
	tokens := NewTokens(secret, time.Hour)
	raw, err := tokens.Issue(3, "ann@example.com", "ann")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"token scheme", "Token " + raw, http.StatusOK},
		{"bearer scheme", "Bearer " + raw, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"basic scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Token nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &captureHandler{}
			r := httptest.NewRequest(http.MethodGet, "/api/user", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			tokens.Required(h).ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status == http.StatusOK, h.called)
			if h.called {
				assert.Equal(t, int64(3), h.userID)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	tokens := NewTokens(secret, time.Hour)

	h := &captureHandler{}
	r := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	r.Header.Set("Authorization", "Token nope")
	tokens.Optional(h).ServeHTTP(httptest.NewRecorder(), r)

	assert.True(t, h.called)
	assert.Zero(t, h.userID)
}
