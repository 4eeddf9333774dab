package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hexarch/items-api/internal/model"
	"github.com/hexarch/items-api/internal/service"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error that escapes a handler as {"detail": ...}.
// Domain validation failures map to 422; anything unrecognized is the
// catch-all 500 and echoes the error text, which is acceptable only while
// this stays a development-grade template.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	detail := fmt.Sprintf("Internal Server Error: %s", err.Error())

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		detail = fmt.Sprintf("%v", httpErr.Message)
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, model.ErrInvalidDiscount):
		status = http.StatusUnprocessableEntity
		detail = err.Error()
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, NewErrorResponse(detail))
}
