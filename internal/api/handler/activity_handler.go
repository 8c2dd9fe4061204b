package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/brightops/admin-gateway/internal/core/ports"
)

// ActivityHandler serves the recent-activity feed widget.
type ActivityHandler struct {
	activity ports.ActivityService
}

func NewActivityHandler(activity ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// Recent handles GET /admin/activity.
func (h *ActivityHandler) Recent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.activity.Recent(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"data": entries})
}
