package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	binderr "github.com/plumelab/plume/pkg/api/errors"
	"github.com/plumelab/plume/pkg/app"
	"github.com/plumelab/plume/pkg/field"
)

// GetFieldHandler renders one field.
//
//	GET /api/fields/:name?component=x|y|length&max=N
//
// maxRes caps rendered grid axes; requests may lower it but not raise
// it past the configured cap.
func GetFieldHandler(src FieldSource, paramName string, maxRes int) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param(paramName)

		component := field.Component("")
		if q := c.QueryParam("component"); q != "" {
			parsed, err := field.ParseComponent(q)
			if err != nil {
				return binderr.BadRequest(err.Error(), nil)
			}
			component = parsed
		}

		limit := maxRes
		if q := c.QueryParam("max"); q != "" {
			requested, err := strconv.Atoi(q)
			if err != nil || requested < 1 {
				return binderr.BadRequest(`query parameter "max" should be a positive integer`, err)
			}
			if limit <= 0 || requested < limit {
				limit = requested
			}
		}

		render, err := src.RenderField(c.Request().Context(), name, component, limit)
		if err != nil {
			if errors.Is(err, app.ErrUnknown) {
				return binderr.NotFound()
			}
			return binderr.Conflict(
				"the field can not be rendered right now",
				binderr.WithError(err),
			)
		}
		return c.JSON(http.StatusOK, render)
	}
}
