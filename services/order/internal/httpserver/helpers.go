package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/dealer_market/pkg/middleware/auth"
	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
	"github.com/Skotchmaster/dealer_market/services/order/internal/service"
)

var errUnauthorized = errors.New("unauthorized")

// GetActor reads the caller placed in the context by the auth middleware.
func GetActor(c echo.Context) (service.Actor, error) {
	s, ok := c.Get(middleware.CtxUserID).(string)
	if !ok || s == "" {
		return service.Actor{}, errUnauthorized
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return service.Actor{}, errUnauthorized
	}

	role, _ := c.Get(middleware.CtxRole).(string)
	r := models.Role(role)
	if !r.Valid() {
		return service.Actor{}, errUnauthorized
	}
	return service.Actor{ID: id, Role: r}, nil
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail logs the failed call and turns a service error into the HTTP error
// the client sees. Internal errors never leak their text.
func fail(l *slog.Logger, event string, err error) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", "internal error", "error", err)
		return echo.NewHTTPError(status, echo.Map{"error": "internal error"})
	}

	l.Warn(event, "status", status, "reason", http.StatusText(status), "error", err)

	body := echo.Map{"error": err.Error()}
	var le *service.LineError
	if errors.As(err, &le) {
		body["product_id"] = le.ProductID
		body["line"] = le.Index
	}
	var tm *service.TotalMismatchError
	if errors.As(err, &tm) {
		body["expected_grand_total"] = tm.Expected.StringFixed(2)
		body["declared_grand_total"] = tm.Declared.StringFixed(2)
	}
	return echo.NewHTTPError(status, body)
}

func unauthorized(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusUnauthorized, "reason", "unauthorized", "error", err)
	return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
