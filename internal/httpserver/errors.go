package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/apparel_shop/internal/payment"
	"github.com/Skotchmaster/apparel_shop/internal/service"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
)

func statusFor(err error) (int, string) {
	var pe *payment.ProviderError
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrOrderNotCompleted),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrProviderNotConfigured):
		return http.StatusServiceUnavailable, err.Error()
	case errors.As(err, &pe):
		// the provider's own message reaches the client unchanged
		return http.StatusBadGateway, pe.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// fail logs err under event and writes the mapped {"error": ...} body.
func fail(c echo.Context, l *slog.Logger, event string, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", msg, "error", err)
	}
	return c.JSON(status, transport.ErrorResponse{Error: msg})
}

func badRequest(c echo.Context, l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: reason})
}

// ErrorHandler renders errors that escape handlers (unknown routes, body
// limits, panics recovered by middleware) in the same {"error": ...} shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, transport.ErrorResponse{Error: msg})
}
