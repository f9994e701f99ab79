package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// ReadCSV streams a headered CSV into a Dataset. columns maps each
// dataset column name to the CSV header names whose values compose
// that column's sample vector, in order:
//
//	ReadCSV(ctx, r, map[string][]string{
//		"input":  {"x0", "x1", "x2"},
//		"target": {"y"},
//	})
//
// Rows with unparsable or missing values are skipped whole, so columns
// stay row-aligned. Reading and parsing run as pipeline stages; a
// canceled ctx aborts the read.
func ReadCSV(ctx context.Context, r io.Reader, columns map[string][]string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	headerIndex := map[string]int{}
	for i, name := range header {
		headerIndex[name] = i
	}

	// column name -> indexes of its csv fields
	fieldIndexes := map[string][]int{}
	for column, fields := range columns {
		indexes := make([]int, len(fields))
		for i, field := range fields {
			idx, ok := headerIndex[field]
			if !ok {
				return nil, fmt.Errorf(
					"column %q wants csv field %q, header has %v", column, field, header,
				)
			}
			indexes[i] = idx
		}
		fieldIndexes[column] = indexes
	}

	g, ctx := errgroup.WithContext(ctx)
	records := make(chan []string, 128)

	g.Go(func() error {
		defer close(records)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := cr.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read csv: %w", err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case records <- record:
			}
		}
	})

	out := make(map[string][][]float64, len(columns))
	for column := range columns {
		out[column] = [][]float64{}
	}
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case record, ok := <-records:
				if !ok {
					return nil
				}
				row, ok := parseRow(record, fieldIndexes)
				if !ok {
					continue // malformed row, skip whole
				}
				for column, vec := range row {
					out[column] = append(out[column], vec)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return FromSamples(out)
}

func parseRow(record []string, fieldIndexes map[string][]int) (map[string][]float64, bool) {
	row := make(map[string][]float64, len(fieldIndexes))
	for column, indexes := range fieldIndexes {
		vec := make([]float64, len(indexes))
		for i, idx := range indexes {
			if len(record) <= idx {
				return nil, false
			}
			v, err := strconv.ParseFloat(record[idx], 64)
			if err != nil {
				return nil, false
			}
			vec[i] = v
		}
		row[column] = vec
	}
	return row, true
}
