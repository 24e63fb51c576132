package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seerlink/seerlink/internal/extract"
	"github.com/seerlink/seerlink/internal/lookup"
	"github.com/seerlink/seerlink/internal/seerr"
)

// httpError maps domain errors onto HTTP status codes.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, lookup.ErrInvalidQuery), seerr.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case lookup.IsNoMatch(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, lookup.ErrStale):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, extract.ErrNoTitle):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case seerr.IsConfig(err):
		return echo.NewHTTPError(http.StatusServiceUnavailable, seerr.UserMessage(err))
	case seerr.IsTransport(err), seerr.IsUpstream(err):
		return echo.NewHTTPError(http.StatusBadGateway, seerr.UserMessage(err))
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "request timed out")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
