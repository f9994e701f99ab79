// Package handlers holds the HTTP handlers of the viewer API.
//
// Each handler is a factory over a narrow interface of the app or
// runner, so tests can feed mocks instead of a live application.
package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/plumelab/plume/pkg/app"
	"github.com/plumelab/plume/pkg/control"
	"github.com/plumelab/plume/pkg/field"
	"github.com/plumelab/plume/pkg/scene"
)

// AppSource snapshots the application.
type AppSource interface {
	Info() app.Info
}

// RunControl drives the step loop.
type RunControl interface {
	Play(maxSteps int) error
	Pause() error
	StepOnce(ctx context.Context) error
	Status() app.Status
}

// FieldSource renders fields for display.
type FieldSource interface {
	RenderField(ctx context.Context, name string, component field.Component, maxRes int) (field.Render, error)
}

// ScalarSource reads recorded summary curves.
type ScalarSource interface {
	Scalar(name string) (scene.Curve, error)
}

// ActionSource invokes registered actions.
type ActionSource interface {
	RunAction(ctx context.Context, name string) error
}

// ControlSource reads and edits controls.
type ControlSource interface {
	ControlState(name string) (control.State, error)
	SetControl(name string, value float64) error
}

// CheckpointSource saves, lists and restores parameter checkpoints.
type CheckpointSource interface {
	SaveCheckpoint() (scene.Checkpoint, error)
	Checkpoints() ([]scene.Checkpoint, error)
	RestoreCheckpoint(id int) error
}

// AppResponse answers GET /api/app.
type AppResponse struct {
	app.Info
	State app.State `json:"state"`
}

// GetAppHandler serves the app snapshot the GUI starts from.
func GetAppHandler(a AppSource, r RunControl) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := AppResponse{Info: a.Info(), State: r.Status().State}
		return c.JSON(http.StatusOK, resp)
	}
}
