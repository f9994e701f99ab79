// Package app is the base of interactive training and simulation
// applications.
//
// A user program constructs an App with a name, registers fields for
// display, objectives to minimize, datasets to feed placeholders, and
// optionally its own step function. viewer.Show then runs the app and
// serves the browser GUI.
//
// All application state is behind one lock: steps, field rendering,
// actions, and control edits each take it in turn, so nothing observes
// a half-finished step.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/plumelab/plume/pkg/blob"
	"github.com/plumelab/plume/pkg/control"
	"github.com/plumelab/plume/pkg/data"
	"github.com/plumelab/plume/pkg/field"
	"github.com/plumelab/plume/pkg/scene"
	"github.com/plumelab/plume/pkg/train"
)

// ErrRunning rejects registrations arriving after the first step.
var ErrRunning = errors.New("the app is already running")

// ErrUnknown names a field, action, control or scalar the app does not have.
var ErrUnknown = errors.New("unknown name")

// StepFunc replaces the default optimization step. batch is nil when
// no dataset is bound.
type StepFunc func(ctx context.Context, batch data.Batch) error

// Recorder mirrors recorded scalars somewhere beyond the scene
// directory, e.g. into the run registry. It must not block on the
// step loop's account.
type Recorder interface {
	Append(step int, name string, value float64)
}

type namedField struct {
	name string
	gen  field.Generator
	kind field.Kind // known after the first render
}

type namedAction struct {
	name string
	fn   func(context.Context) error
}

type objective struct {
	name      string
	fn        train.Objective
	optimizer train.Optimizer
}

// App is one interactive application.
type App struct {
	name     string
	subtitle string

	mu sync.Mutex

	params     *train.Params
	fields     []*namedField
	objectives []*objective
	actions    []namedAction
	controls   []control.Control

	binding      data.Binding
	placeholders []data.Placeholder
	trainSet     *data.Dataset
	valSet       *data.Dataset
	batchSize    int
	batchSeed    int64

	stepFn             StepFunc
	learningRate       float64
	validationInterval int
	checkpointInterval int
	recordInterval     int
	recordFields       []string
	precision          blob.DType

	sceneRoot     string
	sceneCategory string
	scn           *scene.Scene

	step     int
	prepared bool
	started  bool

	batches     <-chan data.Batch
	batchCancel context.CancelFunc

	logger   *log.Logger
	recorder Recorder
}

type Option func(*App)

// WithSubtitle sets a one-line description shown under the app name.
func WithSubtitle(s string) Option {
	return func(a *App) { a.subtitle = s }
}

// WithLearningRate sets the learning rate of default optimizers
// (default 1e-3).
func WithLearningRate(lr float64) Option {
	return func(a *App) { a.learningRate = lr }
}

// WithStep replaces the default optimization step.
func WithStep(fn StepFunc) Option {
	return func(a *App) { a.stepFn = fn }
}

// WithBatchSize sets the training batch size (default 16).
func WithBatchSize(n int) Option {
	return func(a *App) { a.batchSize = n }
}

// WithBatchSeed seeds epoch shuffling (default 1).
func WithBatchSeed(seed int64) Option {
	return func(a *App) { a.batchSeed = seed }
}

// WithValidationInterval runs a validation pass every n steps
// (default 100; 0 disables).
func WithValidationInterval(n int) Option {
	return func(a *App) { a.validationInterval = n }
}

// WithCheckpointInterval saves parameters every n steps (0 disables;
// checkpoints can always be taken by hand from the GUI).
func WithCheckpointInterval(n int) Option {
	return func(a *App) { a.checkpointInterval = n }
}

// WithRecordedFields snapshots the named fields into the scene every
// interval steps.
func WithRecordedFields(interval int, names ...string) Option {
	return func(a *App) {
		a.recordInterval = interval
		a.recordFields = names
	}
}

// WithPrecision sets the dtype of checkpoint and frame snapshots
// (default float64).
func WithPrecision(dtype blob.DType) Option {
	return func(a *App) { a.precision = dtype }
}

// WithSceneRoot places the app's scenes under <root>/<category>.
// The default is ./scenes/<app name, lowercased>; an empty category
// keeps that default.
func WithSceneRoot(root, category string) Option {
	return func(a *App) {
		a.sceneRoot = root
		if category != "" {
			a.sceneCategory = category
		}
	}
}

// WithLogger sets the app's logger.
func WithLogger(l *log.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithRecorder mirrors scalar records into r.
func WithRecorder(r Recorder) Option {
	return func(a *App) { a.recorder = r }
}

// New constructs an application.
func New(name string, opts ...Option) *App {
	a := &App{
		name:               name,
		params:             train.NewParams(),
		batchSize:          16,
		batchSeed:          1,
		learningRate:       1e-3,
		validationInterval: 100,
		precision:          blob.Float64,
		sceneRoot:          "scenes",
		sceneCategory:      categoryOf(name),
		logger:             log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func categoryOf(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func (a *App) Name() string { return a.name }

func (a *App) Subtitle() string { return a.subtitle }

// CurrentStep is the number of executed steps.
func (a *App) CurrentStep() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.step
}

// Scene is the app's run directory; nil before Prepare.
func (a *App) Scene() *scene.Scene {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scn
}

// Params holds the app's trainable parameters.
func (a *App) Params() *train.Params {
	return a.params
}

// ModelScope is the naming context for trainable parameters. Everything
// registered under it shares the "model/" prefix, so it is saved,
// loaded and displayed as one group.
func (a *App) ModelScope() *train.Scope {
	return a.params.Scope("model")
}

// SetRecorder attaches r; scalars recorded from now on mirror into it.
func (a *App) SetRecorder(r Recorder) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recorder = r
}

// AddField registers a named field. gen is re-evaluated on every GUI
// refresh; wrap constants with field.Static.
func (a *App) AddField(name string, gen field.Generator) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, f := range a.fields {
		if f.name == name {
			return fmt.Errorf("field %q is already registered", name)
		}
	}
	a.fields = append(a.fields, &namedField{name: name, gen: gen})
	return nil
}

type ObjectiveOption func(*objective)

// WithOptimizer attaches a specific optimizer to one objective,
// instead of the default Adam.
func WithOptimizer(o train.Optimizer) ObjectiveOption {
	return func(ob *objective) { ob.optimizer = o }
}

// AddObjective registers a loss term. Each objective is minimized by
// its own optimizer each step, and its loss is recorded as a scalar
// summary under the objective's name.
//
// Registration stays open through Prepare, but not past the first
// step: afterwards AddObjective returns ErrRunning.
func (a *App) AddObjective(name string, fn train.Objective, opts ...ObjectiveOption) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return fmt.Errorf("%w: objective %q comes too late", ErrRunning, name)
	}
	for _, ob := range a.objectives {
		if ob.name == name {
			return fmt.Errorf("objective %q is already registered", name)
		}
	}

	ob := &objective{name: name, fn: fn}
	for _, opt := range opts {
		opt(ob)
	}
	if ob.optimizer == nil {
		ob.optimizer = train.NewAdam(a.learningRate)
	}
	a.objectives = append(a.objectives, ob)
	return nil
}

// SetData binds placeholders to dataset columns. Each step draws a
// batch from trainSet; valSet, when non-nil, feeds the periodic
// validation pass. When placeholders are given, both datasets are
// checked against their shapes right away.
func (a *App) SetData(binding data.Binding, trainSet, valSet *data.Dataset, placeholders ...data.Placeholder) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.prepared {
		return fmt.Errorf("%w: data must be bound before Prepare", ErrRunning)
	}
	if trainSet != nil {
		if err := trainSet.Validate(binding, placeholders...); err != nil {
			return err
		}
	}
	if valSet != nil {
		if err := valSet.Validate(binding, placeholders...); err != nil {
			return err
		}
	}
	a.binding = binding
	a.trainSet = trainSet
	a.valSet = valSet
	a.placeholders = placeholders
	return nil
}

// AddAction registers a GUI button.
func (a *App) AddAction(name string, fn func(context.Context) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, act := range a.actions {
		if act.name == name {
			return fmt.Errorf("action %q is already registered", name)
		}
	}
	a.actions = append(a.actions, namedAction{name: name, fn: fn})
	return nil
}

// AddControl registers an editable value.
func (a *App) AddControl(c control.Control) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ec := range a.controls {
		if ec.Name() == c.Name() {
			return fmt.Errorf("control %q is already registered", c.Name())
		}
	}
	a.controls = append(a.controls, c)
	return nil
}

// Prepare creates the scene directory, writes its description and
// starts the batch feed. It runs at most once; later calls are no-ops.
// viewer.Show calls it automatically.
func (a *App) Prepare(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prepare(ctx)
}

func (a *App) prepare(ctx context.Context) error {
	if a.prepared {
		return nil
	}

	scn, err := scene.Create(a.sceneRoot, a.sceneCategory)
	if err != nil {
		return err
	}

	controls := map[string]float64{}
	for _, c := range a.controls {
		controls[c.Name()] = c.Get()
	}
	fields := make([]string, len(a.fields))
	for i, f := range a.fields {
		fields[i] = f.name
	}
	objectives := make([]string, len(a.objectives))
	for i, ob := range a.objectives {
		objectives[i] = ob.name
	}
	if err := scn.WriteDescription(scene.Description{
		Name:       a.name,
		Subtitle:   a.subtitle,
		CreatedAt:  time.Now(),
		Fields:     fields,
		Objectives: objectives,
		Controls:   controls,
	}); err != nil {
		return err
	}

	if a.trainSet != nil {
		// the feed outlives ctx; it stops when the app closes
		feedCtx, cancel := context.WithCancel(context.Background())
		batches, err := a.trainSet.Batches(
			feedCtx, a.binding, a.batchSize,
			data.WithShuffle(a.batchSeed), data.WithPlaceholders(a.placeholders...),
		)
		if err != nil {
			cancel()
			return err
		}
		a.batches = batches
		a.batchCancel = cancel
	}

	a.scn = scn
	a.prepared = true
	a.logger.Printf("scene %s prepared for %q", scn.Dir(), a.name)
	return nil
}

// Close stops the batch feed and releases the scene's file handles.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.batchCancel != nil {
		a.batchCancel()
		a.batchCancel = nil
	}
	if a.scn != nil {
		return a.scn.Close()
	}
	return nil
}
