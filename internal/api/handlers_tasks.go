package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seerlink/seerlink/internal/scheduler"
)

// TaskHandlers exposes the background tasks.
type TaskHandlers struct {
	scheduler *scheduler.Scheduler
}

func NewTaskHandlers(sched *scheduler.Scheduler) *TaskHandlers {
	return &TaskHandlers{scheduler: sched}
}

// RegisterRoutes registers task routes on the given group.
func (h *TaskHandlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListTasks)
	g.GET("/:id", h.GetTask)
	g.POST("/:id/run", h.RunTask)
}

// ListTasks returns all scheduled tasks.
// GET /api/v1/tasks
func (h *TaskHandlers) ListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.ListTasks())
}

// GetTask returns one task.
// GET /api/v1/tasks/:id
func (h *TaskHandlers) GetTask(c echo.Context) error {
	task, err := h.scheduler.GetTask(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, task)
}

// RunTask runs a task now and returns its updated state.
// POST /api/v1/tasks/:id/run
func (h *TaskHandlers) RunTask(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.scheduler.GetTask(id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err := h.scheduler.RunNow(id); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	task, err := h.scheduler.GetTask(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, task)
}
