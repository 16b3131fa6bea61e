package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/halwiz/storefront/internal/models"
	"github.com/halwiz/storefront/internal/service"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/internal/util"
	authmw "github.com/halwiz/storefront/pkg/middleware/auth"
	"github.com/halwiz/storefront/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func currentUser(c echo.Context) (*models.User, error) {
	u, ok := authmw.PrincipalFrom(c).(*models.User)
	if !ok || u == nil {
		return nil, fmt.Errorf("%w: not authenticated", service.ErrUnauthorized)
	}
	return u, nil
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "register", err)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Registration successful",
		"userId":  res.ExternalID,
		"token":   res.Token,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "login", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login", err)
	}

	l.Info("login_success", "user_id", res.UserID)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Login successful",
		"token":   res.Token,
		"userId":  res.UserID,
		"isAdmin": res.IsAdmin,
	})
}

func (h *AuthHTTP) MakeAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.make_admin")

	caller, err := currentUser(c)
	if err != nil {
		return fail(l, "make_admin", err)
	}

	user, err := h.Svc.Promote(ctx, caller, c.Param("id"))
	if err != nil {
		return fail(l, "make_admin", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": user.Name + " is now an admin",
		"userId":  user.ID,
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
	})
}

func (h *AuthHTTP) AllUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.all_users")

	offset, limit := util.FromQuery(c.QueryParam("page"), c.QueryParam("size"))
	total, users, err := h.Svc.ListUsers(ctx, offset, limit)
	if err != nil {
		return fail(l, "all_users", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"message":    "All users fetched successfully",
		"totalUsers": total,
		"data":       users,
	})
}
