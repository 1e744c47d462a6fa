package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/service"
)

type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type rejectionBody struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// ErrorHandler maps service errors onto HTTP responses. Business
// rejections are a 200 carrying an error message.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			e.DefaultHTTPErrorHandler(he, c)
			return
		}

		status, body := classify(err)
		if status >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
		}
	}
}

func classify(err error) (int, any) {
	if rej, ok := service.AsRejection(err); ok {
		return http.StatusOK, rejectionBody{Error: rej.Message, Redirect: rej.Redirect}
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		if errors.Is(err, service.ErrConflict) {
			return http.StatusConflict, errorBody{Message: "conflict", Errors: verr.Fields}
		}
		return http.StatusUnprocessableEntity, errorBody{Message: "validation failed", Errors: verr.Fields}
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, errorBody{Message: "not found"}
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Message: "unauthorized"}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, errorBody{Message: "forbidden"}
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, errorBody{Message: "conflict"}
	}
	return http.StatusInternalServerError, errorBody{Message: "internal error"}
}
