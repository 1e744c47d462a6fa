package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/service"
	"github.com/appdotbuilder/pc-part-shop/internal/tokens"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
)

type AuthHandler struct {
	Svc          *service.AuthService
	CookieSecure bool
}

type userResponse struct {
	User *models.User `json:"user"`
}

func (h *AuthHandler) setPair(c echo.Context, pair *tokens.Pair) {
	for _, ck := range pair.Cookies(h.CookieSecure) {
		c.SetCookie(ck)
	}
}

func (h *AuthHandler) clear(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", h.CookieSecure))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", h.CookieSecure))
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	u, err := h.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: u})
}

func (h *AuthHandler) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	pair, u, err := h.Svc.Login(c.Request().Context(), req)
	if err != nil {
		l.Warn("login_failed", "email", req.Email, "error", err)
		return err
	}
	h.setPair(c, pair)
	return c.JSON(http.StatusOK, userResponse{User: u})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ck, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || ck.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}
	pair, u, err := h.Svc.Refresh(c.Request().Context(), ck.Value)
	if err != nil {
		h.clear(c)
		return err
	}
	h.setPair(c, pair)
	return c.JSON(http.StatusOK, userResponse{User: u})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	raw := ""
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		raw = ck.Value
	}
	if err := h.Svc.Logout(c.Request().Context(), raw); err != nil {
		return err
	}
	h.clear(c)
	return c.JSON(http.StatusOK, message{Message: "Logged out."})
}
