package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	userID := uuid.NewString()

	tok, exp, err := NewSessionToken(userID, true, 365*24*time.Hour, secret)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := SessionClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.True(t, claims.IsAdmin)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestSessionClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	expired, _, err := NewSessionToken(uuid.NewString(), false, -time.Minute, secret)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x"},
	}).SignedString(secret)
	require.NoError(t, err)

	good, _, err := NewSessionToken(uuid.NewString(), false, time.Hour, secret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{name: "garbage", token: "not-a-jwt", secret: secret},
		{name: "expired", token: expired, secret: secret},
		{name: "missing exp", token: noExp, secret: secret},
		{name: "wrong secret", token: good, secret: []byte("other")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := SessionClaimsFromToken(tt.token, tt.secret)
			require.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
