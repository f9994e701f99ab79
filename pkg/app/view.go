package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/plumelab/plume/pkg/control"
	"github.com/plumelab/plume/pkg/field"
	"github.com/plumelab/plume/pkg/scene"
	"github.com/plumelab/plume/pkg/train"
)

// FieldInfo names a registered field. Kind is empty until the field
// has been rendered or recorded once.
type FieldInfo struct {
	Name string     `json:"name"`
	Kind field.Kind `json:"kind,omitempty"`
}

// Info is the app snapshot the GUI starts from.
type Info struct {
	Name        string              `json:"name"`
	Subtitle    string              `json:"subtitle,omitempty"`
	Step        int                 `json:"step"`
	Fields      []FieldInfo         `json:"fields"`
	Objectives  []string            `json:"objectives"`
	Actions     []string            `json:"actions"`
	Controls    []control.State     `json:"controls"`
	ParamGroups map[string][]string `json:"param_groups,omitempty"`
	SceneDir    string              `json:"scene_dir,omitempty"`
}

// Info snapshots the app for the GUI.
func (a *App) Info() Info {
	a.mu.Lock()
	defer a.mu.Unlock()

	info := Info{
		Name:       a.name,
		Subtitle:   a.subtitle,
		Step:       a.step,
		Fields:     []FieldInfo{},
		Objectives: []string{},
		Actions:    []string{},
		Controls:   []control.State{},
	}
	for _, f := range a.fields {
		info.Fields = append(info.Fields, FieldInfo{Name: f.name, Kind: f.kind})
	}
	for _, ob := range a.objectives {
		info.Objectives = append(info.Objectives, ob.name)
	}
	for _, act := range a.actions {
		info.Actions = append(info.Actions, act.name)
	}
	for _, c := range a.controls {
		info.Controls = append(info.Controls, control.StateOf(c))
	}

	groups := map[string][]string{}
	a.params.Visit(func(name string, _ *train.Tensor) {
		group := name
		if at := strings.Index(name, "/"); 0 <= at {
			group = name[:at]
		}
		groups[group] = append(groups[group], name)
	})
	if 0 < len(groups) {
		info.ParamGroups = groups
	}
	if a.scn != nil {
		info.SceneDir = a.scn.Dir()
	}
	return info
}

// RenderField evaluates the named field's generator and renders it for
// display. A non-empty component extracts that component of a vector
// field first. The app lock is held throughout, so the generator sees
// a consistent snapshot between steps.
func (a *App) RenderField(ctx context.Context, name string, component field.Component, maxRes int) (field.Render, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, ok := a.lookupField(name)
	if !ok {
		return field.Render{}, fmt.Errorf("%w: field %q", ErrUnknown, name)
	}

	value, err := f.gen(ctx)
	if err != nil {
		return field.Render{}, fmt.Errorf("field %q: %w", name, err)
	}
	f.kind = value.Kind()

	if component != "" {
		vec, ok := value.(*field.VectorGrid)
		if !ok {
			return field.Render{}, fmt.Errorf("field %q has no %s component", name, component)
		}
		scal, err := vec.Component(component)
		if err != nil {
			return field.Render{}, fmt.Errorf("field %q: %w", name, err)
		}
		return scal.Render(maxRes), nil
	}
	return value.Render(maxRes), nil
}

// RunAction invokes a registered action. Actions queue behind the app
// lock, so they never interleave with a step.
func (a *App) RunAction(ctx context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, act := range a.actions {
		if act.name == name {
			return act.fn(ctx)
		}
	}
	return fmt.Errorf("%w: action %q", ErrUnknown, name)
}

// Controls snapshots all controls.
func (a *App) Controls() []control.State {
	a.mu.Lock()
	defer a.mu.Unlock()

	states := make([]control.State, len(a.controls))
	for i, c := range a.controls {
		states[i] = control.StateOf(c)
	}
	return states
}

// ControlState snapshots one control.
func (a *App) ControlState(name string) (control.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range a.controls {
		if c.Name() == name {
			return control.StateOf(c), nil
		}
	}
	return control.State{}, fmt.Errorf("%w: control %q", ErrUnknown, name)
}

// SetControl edits one control. Edits queue behind the app lock.
func (a *App) SetControl(name string, value float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range a.controls {
		if c.Name() == name {
			return c.Set(value)
		}
	}
	return fmt.Errorf("%w: control %q", ErrUnknown, name)
}

// Scalar reads a recorded summary curve from the scene.
func (a *App) Scalar(name string) (scene.Curve, error) {
	a.mu.Lock()
	scn := a.scn
	a.mu.Unlock()

	if scn == nil {
		return scene.Curve{}, fmt.Errorf("%w: scalar %q (nothing recorded yet)", ErrUnknown, name)
	}
	return scn.ReadScalar(name)
}

// SaveCheckpoint saves all parameters at the current step.
func (a *App) SaveCheckpoint() (scene.Checkpoint, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.prepare(context.Background()); err != nil {
		return scene.Checkpoint{}, err
	}
	id, err := a.scn.SaveCheckpoint(a.step, a.params, a.precision)
	if err != nil {
		return scene.Checkpoint{}, err
	}
	for _, c := range a.checkpointsLocked() {
		if c.Id == id {
			return c, nil
		}
	}
	return scene.Checkpoint{Id: id, Step: a.step}, nil
}

// Checkpoints lists the scene's checkpoints.
func (a *App) Checkpoints() ([]scene.Checkpoint, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.scn == nil {
		return []scene.Checkpoint{}, nil
	}
	return a.scn.Checkpoints()
}

func (a *App) checkpointsLocked() []scene.Checkpoint {
	if a.scn == nil {
		return nil
	}
	checkpoints, err := a.scn.Checkpoints()
	if err != nil {
		return nil
	}
	return checkpoints
}

// RestoreCheckpoint loads the parameters saved under id.
func (a *App) RestoreCheckpoint(id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.scn == nil {
		return fmt.Errorf("%w: checkpoint %d (no scene yet)", ErrUnknown, id)
	}
	snapshot, err := a.scn.LoadCheckpoint(id)
	if err != nil {
		return fmt.Errorf("%w: checkpoint %d", ErrUnknown, id)
	}
	return a.params.Restore(snapshot)
}
