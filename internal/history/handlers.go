package history

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handlers serves the stored request history.
type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers history routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.DELETE("", h.Clear)
}

// List returns submissions newest first.
// GET /api/v1/history?page=&pageSize=&eventType=&mediaType=
func (h *Handlers) List(c echo.Context) error {
	eventType := c.QueryParam("eventType")
	switch EventType(eventType) {
	case "", EventTypeSubmitted, EventTypeFailed:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown eventType "+strconv.Quote(eventType))
	}

	result, err := h.service.List(c.Request().Context(), ListOptions{
		EventType: eventType,
		MediaType: c.QueryParam("mediaType"),
		Page:      positiveParam(c, "page"),
		PageSize:  positiveParam(c, "pageSize"),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

// Clear deletes every stored submission.
// DELETE /api/v1/history
func (h *Handlers) Clear(c echo.Context) error {
	if err := h.service.DeleteAll(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// positiveParam returns the named query parameter, or 0 when absent or invalid.
func positiveParam(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 1 {
		return 0
	}
	return v
}
