package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	binderr "github.com/plumelab/plume/pkg/api/errors"
	"github.com/plumelab/plume/pkg/app"
)

// GetControlHandler serves the state of one control.
//
//	GET /api/controls/:name
func GetControlHandler(src ControlSource, paramName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		state, err := src.ControlState(c.Param(paramName))
		if err != nil {
			if errors.Is(err, app.ErrUnknown) {
				return binderr.NotFound()
			}
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, state)
	}
}

// PutControlHandler edits one control.
//
//	PUT /api/controls/:name  with body {"value": V}
//
// Values failing the control's type or range check are rejected.
func PutControlHandler(src ControlSource, paramName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if !strings.HasPrefix(strings.ToLower(req.Header.Get("content-type")), "application/json") {
			return binderr.BadRequest("unexpected content type. it should be application/json", nil)
		}

		body := struct {
			Value *float64 `json:"value"`
		}{}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return binderr.BadRequest("can not understand the requested json", err)
		}
		if body.Value == nil {
			return binderr.BadRequest(`required field missing: "value"`, nil)
		}

		name := c.Param(paramName)
		if err := src.SetControl(name, *body.Value); err != nil {
			if errors.Is(err, app.ErrUnknown) {
				return binderr.NotFound()
			}
			return binderr.BadRequest(err.Error(), nil)
		}

		state, err := src.ControlState(name)
		if err != nil {
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, state)
	}
}
