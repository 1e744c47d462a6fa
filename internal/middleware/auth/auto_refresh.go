package authmw

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/tokens"
)

// Refresher rotates a refresh token into a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, *models.User, error)
}

type AutoRefreshMiddleware struct {
	JWTSecret    []byte
	Refresher    Refresher
	CookieSecure bool
}

func NewAutoRefreshMiddleware(secret []byte, r Refresher, secure bool) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{JWTSecret: secret, Refresher: r, CookieSecure: secure}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

var (
	errMissingAccess  = echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	errInvalidAccess  = echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
	errMissingRefresh = echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	errRefreshFailed  = echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
)

// authenticate resolves the caller's claims from the access cookie. An
// expired access token is renewed through the refresh cookie and the new
// pair is written back.
func (m *AutoRefreshMiddleware) authenticate(c echo.Context) (*tokens.AccessClaims, error) {
	accessCookie, err := c.Cookie(tokens.AccessCookie)
	hasAccess := err == nil && accessCookie.Value != ""

	if hasAccess {
		claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
		if err == nil {
			return claims, nil
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			m.clearAuthCookies(c)
			return nil, errInvalidAccess
		}
	}

	refreshCookie, rErr := c.Cookie(tokens.RefreshCookie)
	if rErr != nil || refreshCookie.Value == "" {
		if !hasAccess {
			return nil, errMissingAccess
		}
		m.clearAuthCookies(c)
		return nil, errMissingRefresh
	}

	ctx := c.Request().Context()
	pair, _, err := m.Refresher.Refresh(ctx, refreshCookie.Value)
	if err != nil {
		logging.FromContext(ctx).Warn("token_refresh_failed", "error", err)
		m.clearAuthCookies(c)
		return nil, errRefreshFailed
	}
	for _, ck := range pair.Cookies(m.CookieSecure) {
		c.SetCookie(ck)
	}

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, m.JWTSecret)
	if err != nil {
		m.clearAuthCookies(c)
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
	}
	return claims, nil
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.authenticate(c)
		if err != nil {
			return err
		}
		if validator != nil {
			if vErr := validator(claims); vErr != nil {
				return vErr
			}
		}
		if err := setUserContext(c, claims); err != nil {
			return err
		}
		return next(c)
	}
}

// OptionalAuth identifies the caller when it can and lets guests through.
func (m *AutoRefreshMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.authenticate(c)
		if err == nil {
			_ = setUserContext(c, claims)
		}
		return next(c)
	}
}

func (m *AutoRefreshMiddleware) clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", m.CookieSecure))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", m.CookieSecure))
}
