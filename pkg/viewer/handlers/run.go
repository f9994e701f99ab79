package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/plumelab/plume/pkg/api/errors"
	"github.com/plumelab/plume/pkg/app"
)

// PlayHandler starts the step loop. An optional JSON body
// {"max_steps": N} pauses the runner after N steps.
func PlayHandler(r RunControl) echo.HandlerFunc {
	return func(c echo.Context) error {
		maxSteps := 0

		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return binderr.BadRequest("can not read the request body", err)
		}
		if 0 < len(body) {
			req := struct {
				MaxSteps int `json:"max_steps"`
			}{}
			if err := json.Unmarshal(body, &req); err != nil {
				return binderr.BadRequest("can not understand the requested json", err)
			}
			if req.MaxSteps < 0 {
				return binderr.BadRequest("max_steps must not be negative", nil)
			}
			maxSteps = req.MaxSteps
		}

		if err := r.Play(maxSteps); err != nil {
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, r.Status())
	}
}

// PauseHandler stops the step loop and waits out the running step.
func PauseHandler(r RunControl) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := r.Pause(); err != nil {
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, r.Status())
	}
}

// StepHandler executes a single step while paused.
func StepHandler(r RunControl) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := r.StepOnce(c.Request().Context()); err != nil {
			if errors.Is(err, app.ErrPlaying) {
				return binderr.Conflict(
					"the runner is playing",
					binderr.WithAdvice("pause before stepping by hand"),
				)
			}
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, r.Status())
	}
}
