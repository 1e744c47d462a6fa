package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appdotbuilder/pc-part-shop/internal/service"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
)

type CatalogHandler struct {
	Svc *service.CatalogService
}

func (h *CatalogHandler) Home(c echo.Context) error {
	home, err := h.Svc.Home(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, home)
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	var q transport.ProductQuery
	if err := c.Bind(&q); err != nil {
		return err
	}
	listing, err := h.Svc.ListProducts(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listing)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	detail, err := h.Svc.GetProduct(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}
