package flush_test

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	kdb "github.com/plumelab/plume/pkg/db"
	"github.com/plumelab/plume/pkg/db/flush"
	"github.com/plumelab/plume/pkg/db/mocks"
)

func quiet() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestFlusher(t *testing.T) {
	t.Run("buffered points reach the registry on Flush", func(t *testing.T) {
		curves := mocks.NewCurveInterface()
		got := map[string][]kdb.Point{}
		mu := sync.Mutex{}
		curves.Impl.Append = func(_ context.Context, runId, name string, points []kdb.Point) error {
			if runId != "run-1" {
				t.Errorf("runId = %s, want run-1", runId)
			}
			mu.Lock()
			defer mu.Unlock()
			got[name] = append(got[name], points...)
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		f := flush.Start(
			ctx, curves, "run-1",
			flush.WithInterval(time.Hour), flush.WithLogger(quiet()),
		)

		f.Append(1, "loss", 0.5)
		f.Append(2, "loss", 0.25)
		f.Append(2, "val_loss", 0.75)

		if err := f.Flush(ctx); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(got["loss"]) != 2 || len(got["val_loss"]) != 1 {
			t.Errorf("flushed points = %+v", got)
		}
		if got["loss"][0] != (kdb.Point{Step: 1, Value: 0.5}) {
			t.Errorf("first loss point = %+v", got["loss"][0])
		}
	})

	t.Run("a failed flush keeps the points for the next one", func(t *testing.T) {
		curves := mocks.NewCurveInterface()
		fail := true
		mu := sync.Mutex{}
		var delivered []kdb.Point
		curves.Impl.Append = func(_ context.Context, _, _ string, points []kdb.Point) error {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return errors.New("registry is down")
			}
			delivered = append(delivered, points...)
			return nil
		}

		bg, stop := context.WithCancel(context.Background())
		defer stop()
		f := flush.Start(
			bg, curves, "run-1",
			flush.WithInterval(time.Hour), flush.WithLogger(quiet()),
		)

		f.Append(1, "loss", 1.0)

		// retries give up when the flush context expires
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := f.Flush(ctx); err == nil {
			t.Fatal("Flush should report the failure")
		}

		mu.Lock()
		fail = false
		mu.Unlock()

		if err := f.Flush(context.Background()); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		mu.Lock()
		defer mu.Unlock()
		if len(delivered) != 1 || delivered[0] != (kdb.Point{Step: 1, Value: 1.0}) {
			t.Errorf("delivered = %+v, want the kept point", delivered)
		}
	})

	t.Run("Close flushes the remainder", func(t *testing.T) {
		curves := mocks.NewCurveInterface()
		curves.Impl.Append = func(context.Context, string, string, []kdb.Point) error {
			return nil
		}

		ctx := context.Background()
		f := flush.Start(
			ctx, curves, "run-1",
			flush.WithInterval(time.Hour), flush.WithLogger(quiet()),
		)
		f.Append(7, "loss", 0.125)

		if err := f.Close(ctx); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if len(curves.Calls.Append) == 0 {
			t.Fatal("Close should have flushed")
		}
		last := curves.Calls.Append[len(curves.Calls.Append)-1]
		if last.Name != "loss" || len(last.Points) != 1 || last.Points[0].Step != 7 {
			t.Errorf("last append = %+v", last)
		}
	})
}
