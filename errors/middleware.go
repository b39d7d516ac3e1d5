package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StatusCode returns the http status of the first HttpError in the chain of err.
func StatusCode(err error) int {
	e := HttpError{}
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

func CustomHTTPErrorHandler(err error, c echo.Context) {
	e := HttpError{}
	if errors.As(err, &e) {
		err = echo.NewHTTPError(e.Code, err.Error()).SetInternal(err)
	}
	c.Echo().DefaultHTTPErrorHandler(err, c)
}
