package loop

import (
	"context"
	"fmt"
	"time"
)

type Next struct {
	// if not nil, breaks with error
	err error

	// if quit == true and err == nil, breaks without error
	quit bool

	// otherwise, continue loop with interval.
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}

	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// Continue the loop.
//
// args:
//
// - interval: sleep before starting the next cycle.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break the loop.
//
// args:
//
// - err: to break the loop with an error, pass a non-nil value.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task is one cycle of a loop.
//
// args:
//
// - context.Context: (sub-)context passed to the cycle.
//
// - T: value carried over from the previous cycle.
type Task[T any] func(context.Context, T) (T, Next)

// Start runs task in a loop.
//
// # Task and Loop
//
// Task should return 2 values.
//
// - T: any value the task needs to carry between cycles.
// It can be a step counter, a cursor, statistics, or something else.
//
// - Next: Continue(time.Duration) or Break(error).
// To run once more, return Continue(d); the task is called again with the
// last T after d (d can be 0). When done, return Break(err); err may be nil.
// The zero value (Next{}) equals Continue(0), that is, "go next ASAP".
//
// # Example
//
// Run 100 training steps, pausing 10ms between them:
//
//	Start(ctx, 0, func(ctx context.Context, step int) (int, Next) {
//		if err := model.Step(ctx); err != nil {
//			return step, Break(err)
//		}
//		step++
//		if 100 <= step {
//			return step, Break(nil)
//		}
//		return step, Continue(10 * time.Millisecond)
//	})
//
// # Args
//
// - ctx: when this context is done, the loop breaks with ctx.Err().
//
// - init: the task is called as task(ctx, init) the first time.
//
// - task: task receiving (context, last value), returning (new value, Next).
//
// - options: options for the loop.
//
// # Returns
//
// - T: the T the task returned last.
// This value is always returned, whether or not an error comes with it.
//
// - error: the error set in Break(error). It is nil when the loop broke
// with Break(nil).
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	value := init
	for {
		interval := 0 * time.Nanosecond

		lc := &loopConfig{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}

		v, n := func() (T, Next) {
			ctx := lc.ctx
			if lc.deferred != nil {
				defer lc.deferred()
			}
			return task(ctx, value)
		}()

		if n.err != nil {
			return v, n.err
		} else if n.quit {
			return v, nil
		} else {
			value = v
			interval = n.interval
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			// shutting down takes priority; check the timer later.
			if !timer.Stop() {
				<-timer.C // drain. see: time.Timer.Stop's document
			}
			return value, ctx.Err()

		case <-timer.C:
			continue
		}
	}
}

type loopConfig struct {
	ctx      context.Context
	deferred func()
}

type LoopOption func(*loopConfig) *loopConfig

// WithTimeout sets a timeout per cycle.
//
// The timeout is set on the context.Context passed to the task.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		return &loopConfig{
			ctx: ctx,
			deferred: func() {
				if lc.deferred != nil {
					defer lc.deferred()
				}
				cancel()
			},
		}
	}
}
