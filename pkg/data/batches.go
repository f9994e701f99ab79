package data

import (
	"context"
	"fmt"
	"math/rand"
)

type batchConfig struct {
	once         bool
	rng          *rand.Rand
	placeholders []Placeholder
}

type BatchOption func(*batchConfig)

// Once stops after a single pass over the dataset (validation runs).
// Without it, iteration is cyclic and runs until ctx is done.
func Once() BatchOption {
	return func(c *batchConfig) {
		c.once = true
	}
}

// WithShuffle reshuffles the sample order at the start of each epoch,
// deterministically from seed.
func WithShuffle(seed int64) BatchOption {
	return func(c *batchConfig) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithPlaceholders checks the binding and the bound columns against
// the given placeholder shapes before any batch is produced.
func WithPlaceholders(placeholders ...Placeholder) BatchOption {
	return func(c *batchConfig) {
		c.placeholders = placeholders
	}
}

// Batches streams batches of batchSize samples, every bound
// placeholder populated from its column. Iteration is cyclic: at the
// end of an epoch the order reshuffles (when WithShuffle is given) and
// the next epoch begins, until ctx is canceled or, with Once, after
// one epoch. Each epoch visits each sample exactly once.
//
// Validation is up front: a binding naming a missing column, or a
// column whose samples do not fit a placeholder given with
// WithPlaceholders, is an error and no channel is returned. An empty
// dataset yields a closed channel.
func (d *Dataset) Batches(ctx context.Context, binding Binding, batchSize int, opts ...BatchOption) (<-chan Batch, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size %d is not positive", batchSize)
	}

	conf := batchConfig{}
	for _, opt := range opts {
		opt(&conf)
	}

	if err := d.Validate(binding, conf.placeholders...); err != nil {
		return nil, err
	}

	ch := make(chan Batch)
	if d.n == 0 {
		close(ch)
		return ch, nil
	}

	go func() {
		defer close(ch)

		indexes := make([]int, d.n)
		for i := range indexes {
			indexes[i] = i
		}

		for {
			if conf.rng != nil {
				conf.rng.Shuffle(len(indexes), func(i, j int) {
					indexes[i], indexes[j] = indexes[j], indexes[i]
				})
			}

			for at := 0; at < len(indexes); at += batchSize {
				end := at + batchSize
				if len(indexes) < end {
					end = len(indexes)
				}

				batch := make(Batch, len(binding))
				for placeholder, column := range binding {
					rows := d.columns[column]
					picked := make([][]float64, 0, end-at)
					for _, idx := range indexes[at:end] {
						picked = append(picked, rows[idx])
					}
					batch[placeholder] = picked
				}

				select {
				case <-ctx.Done():
					return
				case ch <- batch:
				}
			}

			if conf.once {
				return
			}
		}
	}()
	return ch, nil
}
