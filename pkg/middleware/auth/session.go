package middleware

import (
	"context"
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/halwiz/storefront/pkg/logging"
	"github.com/halwiz/storefront/pkg/tokens"
)

const (
	claimsKey    = "session_claims"
	principalKey = "principal"
	userIDKey    = "user_id"
)

// Principal is the authenticated caller as loaded from the store.
type Principal interface {
	Admin() bool
}

// ErrNoPrincipal is returned by a PrincipalLoader when the token's subject no
// longer exists. Any other loader error is treated as a store failure.
var ErrNoPrincipal = errors.New("principal not found")

// PrincipalLoader resolves verified claims into the stored user. It must
// return an error wrapping ErrNoPrincipal when the referenced user no longer exists.
type PrincipalLoader func(ctx context.Context, claims *tokens.SessionClaims) (Principal, error)

type SessionMiddleware struct {
	verify echo.MiddlewareFunc
	load   PrincipalLoader
}

func NewSessionMiddleware(secret []byte, load PrincipalLoader) *SessionMiddleware {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return tokens.SessionClaimsFromToken(auth, secret)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid session token").SetInternal(err)
		},
	})

	return &SessionMiddleware{verify: verify, load: load}
}

func (m *SessionMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.verify(m.attachPrincipal(next))
}

// RequireAdmin checks the admin flag of the stored user, never the token claim.
func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(AdminOnly(next))
}

func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := PrincipalFrom(c)
		if p == nil || !p.Admin() {
			logging.FromContext(c.Request().Context()).Warn("admin_check_failed", "status", http.StatusForbidden)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

func (m *SessionMiddleware) attachPrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(claimsKey).(*tokens.SessionClaims)
		if !ok || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid session token")
		}

		ctx := c.Request().Context()
		p, err := m.load(ctx, claims)
		switch {
		case errors.Is(err, ErrNoPrincipal), err == nil && p == nil:
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found").SetInternal(err)
		case err != nil:
			logging.FromContext(ctx).Error("load_principal_failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
		}

		l := logging.FromContext(ctx).With(userIDKey, claims.Subject)
		c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))

		c.Set(principalKey, p)
		c.Set(userIDKey, claims.Subject)
		return next(c)
	}
}

func PrincipalFrom(c echo.Context) Principal {
	p, _ := c.Get(principalKey).(Principal)
	return p
}
