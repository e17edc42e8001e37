package admin

import (
	"net/http"
	"strconv"
	"time"

	"fixoo-backend/internal/models"
	"fixoo-backend/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the admin/statistics surface.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new admin handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) GetStatsOverview(c echo.Context) error {
	overview, err := h.svc.Overview(c.Request().Context())
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, overview)
}

func (h *Handler) GetStatsByDate(c echo.Context) error {
	day, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	stats, err := h.svc.ByDate(c.Request().Context(), day)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, stats)
}

func (h *Handler) GetStatsByRange(c echo.Context) error {
	start, err := time.Parse("2006-01-02", c.QueryParam("start"))
	if err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", c.QueryParam("end"))
	if err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
	}

	stats, err := h.svc.ByRange(c.Request().Context(), start, end)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, stats)
}

func (h *Handler) GetChartSeries(c echo.Context) error {
	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return utils.RespondWithError(c, http.StatusBadRequest, "Invalid days parameter")
		}
		days = parsed
	}

	points, err := h.svc.ChartSeries(c.Request().Context(), days)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, points)
}

func (h *Handler) GetAllOrders(c echo.Context) error {
	f := models.OrderFilter{
		ClientID:     c.QueryParam("client_id"),
		SpecialistID: c.QueryParam("specialist_id"),
		Status:       models.OrderStatus(c.QueryParam("status")),
		Profession:   c.QueryParam("profession"),
		Region:       c.QueryParam("region"),
	}
	if f.Status != "" && !models.KnownStatus(f.Status) {
		return utils.RespondWithError(c, http.StatusBadRequest, "Unknown status filter")
	}

	orders, err := h.svc.ListOrders(c.Request().Context(), f)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"orders": orders, "total": len(orders)})
}

func (h *Handler) GetAllUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"users": users, "total": len(users)})
}
