package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	authmw "github.com/appdotbuilder/pc-part-shop/internal/middleware/auth"
	"github.com/appdotbuilder/pc-part-shop/internal/middleware/session"
	"github.com/appdotbuilder/pc-part-shop/internal/service"
)

// callerFrom builds the service identity from what the middleware stored.
func callerFrom(c echo.Context) service.Caller {
	caller := service.Caller{SessionID: session.ID(c), Role: authmw.Role(c)}
	if id, ok := authmw.UserID(c); ok {
		caller.UserID = &id
	}
	return caller
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

type message struct {
	Message string `json:"message"`
}
