package handlers_test

import (
	"context"
	"errors"

	"github.com/plumelab/plume/pkg/app"
	"github.com/plumelab/plume/pkg/control"
	"github.com/plumelab/plume/pkg/field"
	"github.com/plumelab/plume/pkg/scene"
)

// mockApp implements the app-facing handler interfaces.
type mockApp struct {
	Impl struct {
		Info              func() app.Info
		RenderField       func(ctx context.Context, name string, component field.Component, maxRes int) (field.Render, error)
		Scalar            func(name string) (scene.Curve, error)
		RunAction         func(ctx context.Context, name string) error
		ControlState      func(name string) (control.State, error)
		SetControl        func(name string, value float64) error
		SaveCheckpoint    func() (scene.Checkpoint, error)
		Checkpoints       func() ([]scene.Checkpoint, error)
		RestoreCheckpoint func(id int) error
	}
	Calls struct {
		RenderField []renderFieldCall
		SetControl  []setControlCall
	}
}

type renderFieldCall struct {
	Name      string
	Component field.Component
	MaxRes    int
}

type setControlCall struct {
	Name  string
	Value float64
}

func newMockApp() *mockApp {
	return &mockApp{}
}

func (m *mockApp) Info() app.Info {
	if m.Impl.Info == nil {
		return app.Info{}
	}
	return m.Impl.Info()
}

func (m *mockApp) RenderField(ctx context.Context, name string, component field.Component, maxRes int) (field.Render, error) {
	m.Calls.RenderField = append(m.Calls.RenderField, renderFieldCall{
		Name: name, Component: component, MaxRes: maxRes,
	})
	if m.Impl.RenderField == nil {
		return field.Render{}, errors.New("[MOCK] not implemented: RenderField")
	}
	return m.Impl.RenderField(ctx, name, component, maxRes)
}

func (m *mockApp) Scalar(name string) (scene.Curve, error) {
	if m.Impl.Scalar == nil {
		return scene.Curve{}, errors.New("[MOCK] not implemented: Scalar")
	}
	return m.Impl.Scalar(name)
}

func (m *mockApp) RunAction(ctx context.Context, name string) error {
	if m.Impl.RunAction == nil {
		return errors.New("[MOCK] not implemented: RunAction")
	}
	return m.Impl.RunAction(ctx, name)
}

func (m *mockApp) ControlState(name string) (control.State, error) {
	if m.Impl.ControlState == nil {
		return control.State{}, errors.New("[MOCK] not implemented: ControlState")
	}
	return m.Impl.ControlState(name)
}

func (m *mockApp) SetControl(name string, value float64) error {
	m.Calls.SetControl = append(m.Calls.SetControl, setControlCall{Name: name, Value: value})
	if m.Impl.SetControl == nil {
		return errors.New("[MOCK] not implemented: SetControl")
	}
	return m.Impl.SetControl(name, value)
}

func (m *mockApp) SaveCheckpoint() (scene.Checkpoint, error) {
	if m.Impl.SaveCheckpoint == nil {
		return scene.Checkpoint{}, errors.New("[MOCK] not implemented: SaveCheckpoint")
	}
	return m.Impl.SaveCheckpoint()
}

func (m *mockApp) Checkpoints() ([]scene.Checkpoint, error) {
	if m.Impl.Checkpoints == nil {
		return nil, errors.New("[MOCK] not implemented: Checkpoints")
	}
	return m.Impl.Checkpoints()
}

func (m *mockApp) RestoreCheckpoint(id int) error {
	if m.Impl.RestoreCheckpoint == nil {
		return errors.New("[MOCK] not implemented: RestoreCheckpoint")
	}
	return m.Impl.RestoreCheckpoint(id)
}

// mockRunner implements handlers.RunControl.
type mockRunner struct {
	Impl struct {
		Play     func(maxSteps int) error
		Pause    func() error
		StepOnce func(ctx context.Context) error
		Status   func() app.Status
	}
	Calls struct {
		Play []int
	}
}

func newMockRunner() *mockRunner {
	return &mockRunner{}
}

func (m *mockRunner) Play(maxSteps int) error {
	m.Calls.Play = append(m.Calls.Play, maxSteps)
	if m.Impl.Play == nil {
		return errors.New("[MOCK] not implemented: Play")
	}
	return m.Impl.Play(maxSteps)
}

func (m *mockRunner) Pause() error {
	if m.Impl.Pause == nil {
		return errors.New("[MOCK] not implemented: Pause")
	}
	return m.Impl.Pause()
}

func (m *mockRunner) StepOnce(ctx context.Context) error {
	if m.Impl.StepOnce == nil {
		return errors.New("[MOCK] not implemented: StepOnce")
	}
	return m.Impl.StepOnce(ctx)
}

func (m *mockRunner) Status() app.Status {
	if m.Impl.Status == nil {
		return app.Status{State: app.Paused}
	}
	return m.Impl.Status()
}
