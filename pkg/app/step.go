package app

import (
	"context"
	"fmt"

	"github.com/plumelab/plume/pkg/blob"
	"github.com/plumelab/plume/pkg/data"
	"github.com/plumelab/plume/pkg/field"
	"github.com/plumelab/plume/pkg/utils/slices"
	"golang.org/x/sync/errgroup"
)

// Step executes one step: draw a batch, run the step function (the
// default one minimizes every objective), record scalars, and take
// periodic validation passes, checkpoints and field recordings.
//
// The step counter advances by exactly one per successful step, and
// every scalar recorded during the step carries the new index.
func (a *App) Step(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.prepare(ctx); err != nil {
		return err
	}
	a.started = true
	step := a.step + 1

	var batch data.Batch
	if a.batches != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-a.batches:
			if ok {
				batch = b
			}
		}
	}

	if a.stepFn != nil {
		if err := a.stepFn(ctx, batch); err != nil {
			return err
		}
	} else {
		for _, ob := range a.objectives {
			loss, grads, err := ob.fn(ctx, batch)
			if err != nil {
				return fmt.Errorf("objective %q: %w", ob.name, err)
			}
			if err := ob.optimizer.Step(a.params, grads); err != nil {
				return fmt.Errorf("objective %q: %w", ob.name, err)
			}
			if err := a.recordScalar(ob.name, step, loss); err != nil {
				return err
			}
		}
	}

	a.step = step

	if a.dueAt(step, a.validationInterval) && a.valSet != nil && 0 < len(a.objectives) {
		if err := a.validate(ctx, step); err != nil {
			return err
		}
	}
	if a.dueAt(step, a.checkpointInterval) {
		if _, err := a.scn.SaveCheckpoint(step, a.params, a.precision); err != nil {
			return err
		}
	}
	if a.dueAt(step, a.recordInterval) && 0 < len(a.recordFields) {
		if err := a.recordFrames(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) dueAt(step, interval int) bool {
	return 0 < interval && step%interval == 0
}

// recordScalar appends one point to the scene log and, when a recorder
// is attached, mirrors it to the run registry.
func (a *App) recordScalar(name string, step int, value float64) error {
	if err := a.scn.AppendScalar(name, step, value); err != nil {
		return err
	}
	if a.recorder != nil {
		a.recorder.Append(step, name, value)
	}
	return nil
}

// validate runs every objective over one pass of the validation set
// and records the mean loss as val_<objective>. Objectives evaluate in
// parallel; none of them updates parameters.
func (a *App) validate(ctx context.Context, step int) error {
	means := make([]float64, len(a.objectives))

	eg, egctx := errgroup.WithContext(ctx)
	for i, ob := range a.objectives {
		i, ob := i, ob
		eg.Go(func() error {
			batches, err := a.valSet.Batches(
				egctx, a.binding, a.batchSize,
				data.Once(), data.WithPlaceholders(a.placeholders...),
			)
			if err != nil {
				return err
			}

			sum, n := 0.0, 0
			for batch := range batches {
				loss, _, err := ob.fn(egctx, batch)
				if err != nil {
					return fmt.Errorf("objective %q on validation: %w", ob.name, err)
				}
				sum += loss * float64(batch.Size())
				n += batch.Size()
			}
			if 0 < n {
				means[i] = sum / float64(n)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, ob := range a.objectives {
		if err := a.recordScalar("val_"+ob.name, step, means[i]); err != nil {
			return err
		}
	}
	return nil
}

// recordFrames snapshots the configured fields into the scene.
func (a *App) recordFrames(ctx context.Context, step int) error {
	for _, name := range a.recordFields {
		f, ok := a.lookupField(name)
		if !ok {
			return fmt.Errorf("%w: recorded field %q", ErrUnknown, name)
		}
		value, err := f.gen(ctx)
		if err != nil {
			return fmt.Errorf("recording field %q: %w", name, err)
		}
		f.kind = value.Kind()

		if err := a.scn.WriteFrame(name, step, func(w *blob.Writer) error {
			return writeFieldEntries(w, value, a.precision)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) lookupField(name string) (*namedField, bool) {
	return slices.First(a.fields, func(f *namedField) bool { return f.name == name })
}

// writeFieldEntries lays a field out as named blob entries.
func writeFieldEntries(w *blob.Writer, f field.Field, dtype blob.DType) error {
	switch v := f.(type) {
	case *field.ScalarGrid:
		return w.Add("values", []int{v.Grid.H, v.Grid.W}, dtype, v.Values)
	case *field.VectorGrid:
		if err := w.Add("u", []int{v.Grid.H, v.Grid.W}, dtype, v.U); err != nil {
			return err
		}
		return w.Add("v", []int{v.Grid.H, v.Grid.W}, dtype, v.V)
	case *field.Points:
		xs := make([]float64, len(v.Positions))
		ys := make([]float64, len(v.Positions))
		for i, p := range v.Positions {
			xs[i] = p.X
			ys[i] = p.Y
		}
		if err := w.Add("x", []int{len(xs)}, dtype, xs); err != nil {
			return err
		}
		if err := w.Add("y", []int{len(ys)}, dtype, ys); err != nil {
			return err
		}
		if len(v.Values) == 0 {
			return nil
		}
		return w.Add("values", []int{len(v.Values)}, dtype, v.Values)
	default:
		return fmt.Errorf("field kind %s cannot be recorded", f.Kind())
	}
}
