package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/service"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
)

type CartHandler struct {
	Svc *service.CartService
}

type cartResponse struct {
	Message string `json:"message,omitempty"`
	*service.CartView
}

// rejected logs a soft refusal before it is rendered as a 200.
func rejected(c echo.Context, handler string, err error) error {
	if rej, ok := service.AsRejection(err); ok {
		logging.FromContext(c.Request().Context()).With("handler", handler).
			Warn(handler+"_rejected", "status", http.StatusOK, "reason", rej.Message)
	}
	return err
}

func (h *CartHandler) GetCart(c echo.Context) error {
	view, err := h.Svc.GetCart(c.Request().Context(), callerFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartResponse{CartView: view})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	view, err := h.Svc.AddItem(c.Request().Context(), callerFrom(c), req)
	if err != nil {
		return rejected(c, "cart.add", err)
	}
	return c.JSON(http.StatusOK, cartResponse{Message: "Product added to cart.", CartView: view})
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	view, err := h.Svc.UpdateItem(c.Request().Context(), callerFrom(c), id, req)
	if err != nil {
		return rejected(c, "cart.update", err)
	}
	return c.JSON(http.StatusOK, cartResponse{Message: "Cart updated.", CartView: view})
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	view, err := h.Svc.RemoveItem(c.Request().Context(), callerFrom(c), id)
	if err != nil {
		return rejected(c, "cart.remove", err)
	}
	return c.JSON(http.StatusOK, cartResponse{Message: "Item removed from cart.", CartView: view})
}
