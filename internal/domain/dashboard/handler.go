package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the dashboard. Any authenticated staff member can
// read it; there is nothing to write.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard/summary", h.GetSummary)
}

func (h *Handler) GetSummary(c echo.Context) error {
	summary, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}
