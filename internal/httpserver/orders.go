package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/service"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
	"github.com/appdotbuilder/pc-part-shop/internal/util"
)

type OrderHandler struct {
	Svc *service.OrderService
}

type orderResponse struct {
	Message string        `json:"message"`
	Order   *models.Order `json:"order"`
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	orders, err := h.Svc.ListOrders(c.Request().Context(), callerFrom(c), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	preview, err := h.Svc.Preview(c.Request().Context(), callerFrom(c))
	if err != nil {
		return rejected(c, "orders.checkout", err)
	}
	return c.JSON(http.StatusOK, preview)
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	order, err := h.Svc.PlaceOrder(c.Request().Context(), callerFrom(c), req)
	if err != nil {
		return rejected(c, "orders.place", err)
	}
	return c.JSON(http.StatusCreated, orderResponse{Message: "Order placed successfully!", Order: order})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	order, err := h.Svc.GetOrder(c.Request().Context(), callerFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}
