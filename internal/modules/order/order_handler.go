package order

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fixoo-backend/internal/models"
	"fixoo-backend/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateOrder(c echo.Context) error {
	clientID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	o, err := h.svc.Create(c.Request().Context(), clientID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, o)
}

// ListMyOrders scopes the listing by the caller's role: clients see orders
// they opened, specialists see orders assigned to them.
func (h *Handler) ListMyOrders(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	f := models.OrderFilter{Status: models.OrderStatus(c.QueryParam("status"))}
	if f.Status != "" && !models.KnownStatus(f.Status) {
		return utils.RespondWithError(c, http.StatusBadRequest, "Unknown status filter")
	}
	switch role {
	case models.RoleSpecialist:
		f.SpecialistID = userID
	default:
		f.ClientID = userID
	}

	orders, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"orders": orders, "total": len(orders)})
}

// ListPending exposes the pending pool to specialists, optionally narrowed
// by profession and region query parameters.
func (h *Handler) ListPending(c echo.Context) error {
	if _, _, err := utils.ExtractUserInfo(c); err != nil {
		return err
	}

	f := models.OrderFilter{
		Profession: c.QueryParam("profession"),
		Region:     c.QueryParam("region"),
	}
	orders, err := h.svc.ListPending(c.Request().Context(), f)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"orders": orders, "total": len(orders)})
}

func (h *Handler) GetOrder(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	o, err := h.svc.GetByID(c.Request().Context(), c.Param("orderId"), userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, o)
}

func (h *Handler) AcceptOrder(c echo.Context) error {
	specialistID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.AcceptOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	o, err := h.svc.Accept(c.Request().Context(), c.Param("orderId"), specialistID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	o, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("orderId"), userID, req.Status)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, o)
}

func (h *Handler) RateOrder(c echo.Context) error {
	clientID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.RateOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	o, err := h.svc.Rate(c.Request().Context(), c.Param("orderId"), clientID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, o)
}

// UpdateOrder merges descriptive fields over a pending order. The body is
// decoded strictly: a key outside the allow-list fails the request instead
// of being silently dropped.
func (h *Handler) UpdateOrder(c echo.Context) error {
	clientID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpdateOrderRequest
	if err := bindStrict(c.Request().Body, &req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	o, err := h.svc.Update(c.Request().Context(), c.Param("orderId"), clientID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, o)
}

func (h *Handler) DeleteOrder(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), c.Param("orderId"), userID); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// bindStrict decodes JSON rejecting unknown keys.
func bindStrict(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Trailing garbage after the object is also a malformed body.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
