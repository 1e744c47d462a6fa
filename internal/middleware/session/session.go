// Package session gives every browser a stable guest id for its cart.
package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CookieName   = "cart_session"
	CtxSessionID = "session_id"
	maxAge       = 30 * 24 * time.Hour
)

// Middleware reuses the session cookie when it holds a valid id and issues
// a new one otherwise.
func Middleware(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(CookieName); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(maxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(CtxSessionID, id)
			return next(c)
		}
	}
}

func ID(c echo.Context) string {
	id, _ := c.Get(CtxSessionID).(string)
	return id
}
