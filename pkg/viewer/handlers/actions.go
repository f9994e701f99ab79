package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/plumelab/plume/pkg/api/errors"
	"github.com/plumelab/plume/pkg/app"
)

// PostActionHandler invokes a registered action.
//
//	POST /api/actions/:name
func PostActionHandler(src ActionSource, paramName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param(paramName)

		if err := src.RunAction(c.Request().Context(), name); err != nil {
			if errors.Is(err, app.ErrUnknown) {
				return binderr.NotFound()
			}
			return binderr.Conflict(
				"the action failed",
				binderr.WithError(err),
			)
		}
		return c.NoContent(http.StatusOK)
	}
}
