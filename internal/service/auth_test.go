package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/pkg/events"
	"github.com/halwiz/storefront/pkg/hash"
	"github.com/halwiz/storefront/pkg/tokens"
)

var testSecret = []byte("test-secret")

func newAuthService(t *testing.T) (*AuthService, *events.Recorder) {
	rec := &events.Recorder{}
	return &AuthService{Repo: newTestRepo(t), Secret: testSecret, SessionTTL: time.Hour, Events: rec}, rec
}

func TestRegisterAndLogin(t *testing.T) {
	s, rec := newAuthService(t)
	ctx := context.Background()

	res, err := s.Register(ctx, transport.RegisterRequest{Name: " Asha ", Email: "Asha@Example.com", Password: "pw123"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.ExternalID)

	claims, err := tokens.SessionClaimsFromToken(res.Token, testSecret)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)

	stored, err := s.Repo.GetUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.Name)
	assert.Equal(t, stored.ID.String(), claims.Subject)
	assert.Equal(t, hash.Sha256Hex(res.Token), stored.SessionTokenHash)
	assert.NotEqual(t, "pw123", stored.PasswordHash)

	_, err = s.Register(ctx, transport.RegisterRequest{Name: "B", Email: "asha@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrConflict)

	_, err = s.Login(ctx, transport.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = s.Login(ctx, transport.LoginRequest{Email: "nobody@example.com", Password: "pw123"})
	require.ErrorIs(t, err, ErrUnauthorized)

	login, err := s.Login(ctx, transport.LoginRequest{Email: "ASHA@example.com", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, login.UserID)
	assert.False(t, login.IsAdmin)

	loaded, err := s.LoadUser(ctx, mustClaims(t, login.Token))
	require.NoError(t, err)
	assert.Equal(t, stored.ID, loaded.ID)

	assert.Equal(t, []string{"user_registered", "user_logged_in"}, rec.Types(events.TopicUsers))
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newAuthService(t)
	_, err := s.Register(context.Background(), transport.RegisterRequest{Email: "a@b.c", Password: "x"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestPromote(t *testing.T) {
	s, _ := newAuthService(t)
	ctx := context.Background()
	caller := seedUser(t, s.Repo, "caller@example.com")
	target := seedUser(t, s.Repo, "target@example.com")

	got, err := s.Promote(ctx, caller, target.ID.String())
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	again, err := s.Promote(ctx, caller, target.ID.String())
	require.NoError(t, err, "promoting an admin again is not a missing user")
	assert.True(t, again.IsAdmin)

	_, err = s.Promote(ctx, caller, uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Promote(ctx, caller, "not-a-uuid")
	require.ErrorIs(t, err, ErrValidation)
}

func TestLoadUser_Missing(t *testing.T) {
	s, _ := newAuthService(t)
	tok, _, err := tokens.NewSessionToken(uuid.NewString(), false, time.Hour, testSecret)
	require.NoError(t, err)

	_, err = s.LoadUser(context.Background(), mustClaims(t, tok))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func mustClaims(t *testing.T, tok string) *tokens.SessionClaims {
	t.Helper()
	c, err := tokens.SessionClaimsFromToken(tok, testSecret)
	require.NoError(t, err)
	return c
}
