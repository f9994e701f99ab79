// Package flush buffers scalar points and writes them to the run
// registry in batches, off the step loop.
//
// Registry trouble never fails a step: Append only buffers, and the
// background flusher retries with exponential backoff while new points
// keep accumulating.
package flush

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	kdb "github.com/plumelab/plume/pkg/db"
	"github.com/plumelab/plume/pkg/loop"
	"github.com/plumelab/plume/pkg/utils/retry"
)

type config struct {
	interval  time.Duration
	threshold int
	logger    *log.Logger
}

type Option func(*config)

// WithInterval sets the cadence of background flushes (default 5s).
func WithInterval(d time.Duration) Option {
	return func(c *config) { c.interval = d }
}

// WithThreshold flushes early once this many points are buffered
// (default 256).
func WithThreshold(n int) Option {
	return func(c *config) { c.threshold = n }
}

// WithLogger sets the logger for flush failures.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Flusher mirrors scalar points of one run into a CurveInterface.
type Flusher struct {
	curves kdb.CurveInterface
	runId  string
	conf   config

	mu  sync.Mutex
	buf map[string][]kdb.Point
	n   int

	cancel context.CancelFunc
	done   chan struct{}
}

// Start builds a Flusher for runId and starts its background loop.
// Stop it with Close.
func Start(ctx context.Context, curves kdb.CurveInterface, runId string, opts ...Option) *Flusher {
	conf := config{
		interval:  5 * time.Second,
		threshold: 256,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(&conf)
	}

	ctx, cancel := context.WithCancel(ctx)
	f := &Flusher{
		curves: curves,
		runId:  runId,
		conf:   conf,
		buf:    map[string][]kdb.Point{},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(f.done)
		loop.Start(ctx, -1, func(ctx context.Context, _ int) (int, loop.Next) {
			if err := f.Flush(ctx); err != nil {
				f.conf.logger.Printf("curve flush for run %s: %s", f.runId, err)
			}
			return -1, loop.Continue(f.conf.interval)
		})
	}()
	return f
}

// Append buffers one point. It never blocks on the database.
func (f *Flusher) Append(step int, name string, value float64) {
	f.mu.Lock()
	f.buf[name] = append(f.buf[name], kdb.Point{Step: step, Value: value})
	f.n += 1
	full := f.conf.threshold <= f.n
	f.mu.Unlock()

	if full {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), f.conf.interval)
			defer cancel()
			if err := f.Flush(ctx); err != nil {
				f.conf.logger.Printf("curve flush for run %s: %s", f.runId, err)
			}
		}()
	}
}

// Flush writes everything buffered so far, retrying each curve with
// exponential backoff until ctx is done. Points arriving during the
// flush stay buffered for the next one.
func (f *Flusher) Flush(ctx context.Context) error {
	f.mu.Lock()
	pending := f.buf
	f.buf = map[string][]kdb.Point{}
	f.n = 0
	f.mu.Unlock()

	var lastErr error
	for name, points := range pending {
		backoff := retry.ExponentialBackoff(10*time.Millisecond, 2)
		_, err := retry.Blocking(ctx, backoff, func() (struct{}, error) {
			if err := f.curves.Append(ctx, f.runId, name, points); err != nil {
				return struct{}{}, fmt.Errorf("%w: %s", retry.ErrRetry, err)
			}
			return struct{}{}, nil
		})
		if err != nil {
			// keep the points; the next flush takes another swing
			f.mu.Lock()
			f.buf[name] = append(points, f.buf[name]...)
			f.n += len(points)
			f.mu.Unlock()
			lastErr = err
		}
	}
	return lastErr
}

// Close stops the background loop and flushes what remains.
func (f *Flusher) Close(ctx context.Context) error {
	f.cancel()
	<-f.done
	return f.Flush(ctx)
}
