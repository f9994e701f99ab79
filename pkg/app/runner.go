package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/plumelab/plume/pkg/loop"
)

// ErrPlaying rejects StepOnce while the runner is playing.
var ErrPlaying = errors.New("the runner is playing")

type State string

const (
	Paused  State = "paused"
	Playing State = "playing"
)

// Status is the runner snapshot the GUI polls.
type Status struct {
	State State `json:"state"`
	Step  int   `json:"step"`
}

// Runner drives an app's step loop with play/pause/step-once control.
type Runner struct {
	app      *App
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	playing bool
	cancel  context.CancelFunc
	done    chan struct{}
}

type RunnerOption func(*Runner)

// WithStepInterval paces playing steps (default: none; steps run
// back to back).
func WithStepInterval(d time.Duration) RunnerOption {
	return func(r *Runner) { r.interval = d }
}

// WithRunnerLogger sets the runner's logger.
func WithRunnerLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

func NewRunner(a *App, opts ...RunnerOption) *Runner {
	r := &Runner{app: a, logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Play starts stepping in the background. With maxSteps > 0 the
// runner pauses itself after that many steps. Playing while already
// playing is a no-op.
func (r *Runner) Play(maxSteps int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.playing {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.playing = true
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		defer cancel()

		_, err := loop.Start(ctx, 0, func(ctx context.Context, n int) (int, loop.Next) {
			if err := r.app.Step(ctx); err != nil {
				return n, loop.Break(err)
			}
			n += 1
			if 0 < maxSteps && maxSteps <= n {
				return n, loop.Break(nil)
			}
			return n, loop.Continue(r.interval)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Printf("step loop of %q stopped: %s", r.app.Name(), err)
		}

		r.mu.Lock()
		r.playing = false
		r.mu.Unlock()
	}()
	return nil
}

// Pause stops the step loop and waits until the running step is done.
// Pausing while paused is a no-op.
func (r *Runner) Pause() error {
	r.mu.Lock()
	if !r.playing {
		r.mu.Unlock()
		return nil
	}
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	<-done
	return nil
}

// StepOnce executes a single step. Rejected with ErrPlaying while the
// runner is playing.
func (r *Runner) StepOnce(ctx context.Context) error {
	r.mu.Lock()
	if r.playing {
		r.mu.Unlock()
		return ErrPlaying
	}
	r.mu.Unlock()

	return r.app.Step(ctx)
}

// Status reports the runner state and the app's step counter.
func (r *Runner) Status() Status {
	r.mu.Lock()
	playing := r.playing
	r.mu.Unlock()

	state := Paused
	if playing {
		state = Playing
	}
	return Status{State: state, Step: r.app.CurrentStep()}
}

// Close pauses the runner.
func (r *Runner) Close() error {
	return r.Pause()
}
