package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	binderr "github.com/plumelab/plume/pkg/api/errors"
	"github.com/plumelab/plume/pkg/app"
)

// SaveCheckpointHandler saves all parameters now.
//
//	POST /api/checkpoints
func SaveCheckpointHandler(src CheckpointSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		checkpoint, err := src.SaveCheckpoint()
		if err != nil {
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, checkpoint)
	}
}

// ListCheckpointsHandler lists saved checkpoints, oldest first.
//
//	GET /api/checkpoints
func ListCheckpointsHandler(src CheckpointSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		checkpoints, err := src.Checkpoints()
		if err != nil {
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, checkpoints)
	}
}

// RestoreCheckpointHandler loads the parameters of one checkpoint.
//
//	POST /api/checkpoints/:id/restore
func RestoreCheckpointHandler(src CheckpointSource, paramId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param(paramId))
		if err != nil {
			return binderr.BadRequest("checkpoint id should be an integer", err)
		}

		if err := src.RestoreCheckpoint(id); err != nil {
			if errors.Is(err, app.ErrUnknown) {
				return binderr.NotFound()
			}
			return binderr.Conflict(
				"the checkpoint does not fit the current parameters",
				binderr.WithError(err),
			)
		}
		return c.NoContent(http.StatusOK)
	}
}
