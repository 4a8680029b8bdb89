package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArmaniKE/clinic-back/internal/repository"
)

// DashboardHandler serves the admin statistics view.
type DashboardHandler struct {
	Dash *repository.DashboardRepo
}

// Stats aggregates revenue and entity counts in one round trip for the
// admin front page.
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.Dash.Collect(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not collect stats"})
	}
	return c.JSON(http.StatusOK, stats)
}
