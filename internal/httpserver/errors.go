package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/halwiz/storefront/internal/service"
	"github.com/halwiz/storefront/pkg/logging"
	"github.com/halwiz/storefront/pkg/otp"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrOutOfStock, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrProvider, http.StatusInternalServerError},
}

// classify maps a service error to a status and the message shown to clients.
// Unknown errors never leak their text.
func classify(err error) (int, string) {
	for _, m := range statusBySentinel {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := strings.TrimPrefix(err.Error(), m.err.Error()+": ")
		if m.err == service.ErrProvider {
			msg, _, _ = strings.Cut(msg, ": ")
		}
		return m.status, msg
	}
	return http.StatusInternalServerError, "internal server error"
}

// fail logs a failed operation and converts err into an *echo.HTTPError.
func fail(l *slog.Logger, op string, err error) error {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(op+"_failed", "status", status, "error", err)
	} else {
		l.Warn(op+"_failed", "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, msg).SetInternal(err)
}

// ErrorHandler renders every error as {success:false, message, error?}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		status, msg = classify(err)
	}

	body := echo.Map{"success": false, "message": msg}
	var pe *otp.ProviderError
	if errors.As(err, &pe) && len(pe.Payload) > 0 {
		body["error"] = pe.Payload
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response_failed", "error", werr)
	}
}
