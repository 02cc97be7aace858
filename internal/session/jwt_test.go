package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "ljos"}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestSessionExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ttl := 2 * time.Hour

	tests := []struct {
		name  string
		token string
		want  time.Time
	}{
		{"opaque token", "not-a-jwt", now.Add(ttl)},
		{"jwt without exp", signedToken(t, time.Time{}), now.Add(ttl)},
		{"jwt expiring first", signedToken(t, now.Add(30*time.Minute)), now.Add(30 * time.Minute)},
		{"jwt outliving ttl", signedToken(t, now.Add(24*time.Hour)), now.Add(ttl)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(sessionExpiry(tt.token, now, ttl)), "got %v", sessionExpiry(tt.token, now, ttl))
		})
	}
}

func TestFileStore_SaveHonoursTokenExpiry(t *testing.T) {
	s := testStore(t, 2*time.Hour)
	now := time.Now().Truncate(time.Second)
	s.now = func() time.Time { return now }

	saved, err := s.Save(signedToken(t, now.Add(10*time.Minute)))
	require.NoError(t, err)
	assert.True(t, now.Add(10*time.Minute).Equal(saved.ExpiresAt))

	s.now = func() time.Time { return now.Add(11 * time.Minute) }
	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}
