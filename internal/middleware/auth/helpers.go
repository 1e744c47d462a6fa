package authmw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appdotbuilder/pc-part-shop/internal/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

func setUserContext(c echo.Context, claims *tokens.AccessClaims) error {
	id, err := claims.UserID()
	if err != nil || id == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
	}
	c.Set(CtxUserID, id)
	c.Set(CtxRole, claims.Role)
	return nil
}

// UserID returns the authenticated user id, if any.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(CtxUserID).(uint)
	return id, ok && id != 0
}

func Role(c echo.Context) string {
	role, _ := c.Get(CtxRole).(string)
	return role
}
