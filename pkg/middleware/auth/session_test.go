package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halwiz/storefront/pkg/tokens"
)

type testUser struct {
	id    string
	admin bool
}

func (u *testUser) Admin() bool { return u.admin }

var secret = []byte("mw-secret")

func newTestEcho(users map[string]*testUser) *echo.Echo {
	mw := NewSessionMiddleware(secret, func(ctx context.Context, claims *tokens.SessionClaims) (Principal, error) {
		if claims.Subject == "broken" {
			return nil, errors.New("connection refused")
		}
		u, ok := users[claims.Subject]
		if !ok {
			return nil, fmt.Errorf("user %s: %w", claims.Subject, ErrNoPrincipal)
		}
		return u, nil
	})

	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("user_id").(string))
	}, mw.RequireAuth)
	e.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, mw.RequireAdmin)
	return e
}

func bearer(t *testing.T, sub string, claimAdmin bool) string {
	tok, _, err := tokens.NewSessionToken(sub, claimAdmin, time.Hour, secret)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestSessionMiddleware(t *testing.T) {
	users := map[string]*testUser{
		"u1": {id: "u1"},
		"a1": {id: "a1", admin: true},
	}
	e := newTestEcho(users)

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
	}{
		{name: "no header", path: "/me", auth: "", status: http.StatusUnauthorized},
		{name: "malformed", path: "/me", auth: "Bearer nope", status: http.StatusUnauthorized},
		{name: "unknown user", path: "/me", auth: bearer(t, "ghost", false), status: http.StatusUnauthorized},
		{name: "store failure is not a bad session", path: "/me", auth: bearer(t, "broken", false), status: http.StatusInternalServerError},
		{name: "ok", path: "/me", auth: bearer(t, "u1", false), status: http.StatusOK},
		{name: "claim admin but record is not", path: "/admin", auth: bearer(t, "u1", true), status: http.StatusForbidden},
		{name: "admin record", path: "/admin", auth: bearer(t, "a1", false), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
