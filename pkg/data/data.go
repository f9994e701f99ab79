// Package data feeds training applications: datasets of columnar
// samples, batch iteration, and the placeholder slots batches fill.
package data

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/plumelab/plume/pkg/utils/slices"
)

// Placeholder is a named input slot with the shape of one sample.
// Each training step fills every bound placeholder from the dataset.
type Placeholder struct {
	Name string
	Dims []int
}

// Len is the flattened sample size of the placeholder.
func (p Placeholder) Len() int {
	n := 1
	for _, d := range p.Dims {
		n *= d
	}
	return n
}

// Binding maps placeholder names to dataset column names.
type Binding map[string]string

// Validate checks a binding against the dataset: every bound column
// must exist and, for each given placeholder, every sample of its
// bound column must hold exactly Len() values. A placeholder left out
// of the binding is an error; partially fed batches are not allowed.
func (d *Dataset) Validate(binding Binding, placeholders ...Placeholder) error {
	for name, column := range binding {
		if _, ok := d.columns[column]; !ok {
			return fmt.Errorf(
				"placeholder %q is bound to missing column %q", name, column,
			)
		}
	}
	for _, p := range placeholders {
		column, ok := binding[p.Name]
		if !ok {
			return fmt.Errorf("placeholder %q is not bound to any column", p.Name)
		}
		want := p.Len()
		for i, row := range d.columns[column] {
			if len(row) != want {
				return fmt.Errorf(
					"column %q sample %d holds %d values, want %d for placeholder %q (shape %v)",
					column, i, len(row), want, p.Name, p.Dims,
				)
			}
		}
	}
	return nil
}

// Batch maps placeholder names to a batch of flattened samples,
// one row per sample. All rows of one batch index the same samples
// across placeholders.
type Batch map[string][][]float64

// Size is the number of samples in the batch.
func (b Batch) Size() int {
	for _, rows := range b {
		return len(rows)
	}
	return 0
}

// Dataset is an in-memory columnar sample store. Every column holds
// one flattened vector per sample; columns are row-aligned.
type Dataset struct {
	columns map[string][][]float64
	n       int
}

// FromSamples builds a Dataset from columns. All columns must hold the
// same number of rows.
func FromSamples(columns map[string][][]float64) (*Dataset, error) {
	if len(columns) == 0 {
		return &Dataset{columns: map[string][][]float64{}}, nil
	}
	n := -1
	for name, rows := range columns {
		if n == -1 {
			n = len(rows)
			continue
		}
		if len(rows) != n {
			return nil, fmt.Errorf(
				"column %q has %d rows, others have %d", name, len(rows), n,
			)
		}
	}
	return &Dataset{columns: columns, n: n}, nil
}

// Len is the sample count.
func (d *Dataset) Len() int {
	return d.n
}

// Columns lists the column names, sorted.
func (d *Dataset) Columns() []string {
	names := slices.KeysOf(d.columns)
	sort.Strings(names)
	return names
}

// Column returns the rows of one column.
func (d *Dataset) Column(name string) ([][]float64, bool) {
	rows, ok := d.columns[name]
	return rows, ok
}

// Split partitions the dataset into a training part holding frac of
// the samples and a validation part holding the rest. When rng is
// non-nil, samples are assigned in shuffled order; row alignment
// across columns is preserved either way.
//
// Split(0) leaves training empty; Split(1) leaves validation empty.
func (d *Dataset) Split(frac float64, rng *rand.Rand) (train, val *Dataset) {
	if frac < 0 {
		frac = 0
	}
	if 1 < frac {
		frac = 1
	}

	indexes := make([]int, d.n)
	for i := range indexes {
		indexes[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(indexes), func(i, j int) {
			indexes[i], indexes[j] = indexes[j], indexes[i]
		})
	}

	nTrain := int(frac * float64(d.n))
	train = d.pick(indexes[:nTrain])
	val = d.pick(indexes[nTrain:])
	return train, val
}

func (d *Dataset) pick(indexes []int) *Dataset {
	columns := make(map[string][][]float64, len(d.columns))
	for name, rows := range d.columns {
		picked := make([][]float64, len(indexes))
		for i, idx := range indexes {
			picked[i] = rows[idx]
		}
		columns[name] = picked
	}
	return &Dataset{columns: columns, n: len(indexes)}
}
