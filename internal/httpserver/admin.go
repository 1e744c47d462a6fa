package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/service"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
)

type AdminHandler struct {
	Svc *service.AdminService
}

type productResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"product"`
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := h.Svc.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListProducts(c echo.Context) error {
	var q transport.AdminProductQuery
	if err := c.Bind(&q); err != nil {
		return err
	}
	listing, err := h.Svc.ListProducts(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listing)
}

func (h *AdminHandler) GetProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	p, err := h.Svc.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, productResponse{Message: "Product created successfully.", Product: p})
}

func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	p, err := h.Svc.UpdateProduct(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productResponse{Message: "Product updated successfully.", Product: p})
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message{Message: "Product deleted successfully."})
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	var q transport.AdminOrderQuery
	if err := c.Bind(&q); err != nil {
		return err
	}
	orders, err := h.Svc.ListOrders(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) GetOrder(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	o, err := h.Svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	o, err := h.Svc.UpdateOrderStatus(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderResponse{Message: "Order status updated successfully.", Order: o})
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	var q transport.AdminUserQuery
	if err := c.Bind(&q); err != nil {
		return err
	}
	users, err := h.Svc.ListUsers(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	detail, err := h.Svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}
