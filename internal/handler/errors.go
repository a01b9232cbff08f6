package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inkwell-journal/internal/journal"
)

// writeErr maps journal errors to HTTP responses.  Storage failures are
// already logged by the service and surface as a generic 500.
func writeErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, journal.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, journal.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, journal.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": journal.ErrNotFound.Error()})
	case errors.Is(err, journal.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": journal.ErrConflict.Error()})
	case errors.Is(err, journal.ErrWrongSecret):
		return c.JSON(http.StatusForbidden, echo.Map{"error": journal.ErrWrongSecret.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
