// Command traindemo fits a 3x3 diffusion stencil to synthetic data.
//
// A reference kernel convolves random smooth grids into targets; the
// app learns the kernel back by gradient descent on the mean squared
// error. The GUI shows the prediction, the target and the error field
// of the most recent batch, plus the fit and validation curves.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"

	"github.com/plumelab/plume/pkg/app"
	cviewer "github.com/plumelab/plume/pkg/configs/viewer"
	"github.com/plumelab/plume/pkg/data"
	"github.com/plumelab/plume/pkg/field"
	"github.com/plumelab/plume/pkg/geom"
	"github.com/plumelab/plume/pkg/train"
	"github.com/plumelab/plume/pkg/viewer"
)

const (
	gridW   = 16
	gridH   = 16
	samples = 512
)

// the kernel the demo tries to recover
var trueKernel = []float64{
	0.05, 0.10, 0.05,
	0.10, 0.40, 0.10,
	0.05, 0.10, 0.05,
}

func main() {
	configPath := flag.String("config", "", "viewer config path")
	port := flag.Int("port", 0, "override the configured port")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	seed := flag.Int64("seed", 20, "dataset seed")
	flag.Parse()

	conf, err := cviewer.Load(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}
	if *port != 0 {
		conf.Port = *port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rng := rand.New(rand.NewSource(*seed))
	dataset, err := data.FromSamples(synthesize(rng, samples, gridW, gridH, trueKernel))
	if err != nil {
		log.Fatalf("can not build the dataset: %s", err)
	}
	trainSet, valSet := dataset.Split(0.8, rng)

	a := app.New(
		"Stencil Fit",
		append(
			viewer.AppOptions(conf),
			app.WithSubtitle("learning a 3x3 diffusion stencil"),
			app.WithBatchSize(8),
			app.WithLearningRate(1e-2),
		)...,
	)

	kernel, err := a.ModelScope().Add("kernel", []int{3, 3}, []float64{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	})
	if err != nil {
		log.Fatal(err)
	}

	// the last evaluated sample, kept for the preview fields; the app
	// serializes steps and renders, so plain fields are safe here
	preview := struct {
		input, target []float64
	}{}

	fit := func(ctx context.Context, batch data.Batch) (float64, train.Grads, error) {
		inputs, ok := batch["input"]
		if !ok {
			return 0, nil, errors.New(`batch has no "input"`)
		}
		targets := batch["target"]

		loss := 0.0
		grads := train.Grads{}
		for i, input := range inputs {
			pred := applyStencil(kernel.Values, input, gridW, gridH)
			l, outGrad := train.MSE(pred, targets[i])
			loss += l
			grads.Accumulate(train.Grads{
				"model/kernel": stencilGrad(outGrad, input, gridW, gridH),
			})
		}
		n := float64(len(inputs))
		loss /= n
		for j := range grads["model/kernel"] {
			grads["model/kernel"][j] /= n
		}

		preview.input = inputs[len(inputs)-1]
		preview.target = targets[len(targets)-1]

		return loss, grads, nil
	}
	if err := a.AddObjective("fit", fit); err != nil {
		log.Fatal(err)
	}

	binding := data.Binding{"input": "input", "target": "target"}
	if err := a.SetData(binding, trainSet, valSet,
		data.Placeholder{Name: "input", Dims: []int{gridH, gridW}},
		data.Placeholder{Name: "target", Dims: []int{gridH, gridW}},
	); err != nil {
		log.Fatal(err)
	}

	grid, err := geom.NewGrid(gridW, gridH, geom.UnitBox())
	if err != nil {
		log.Fatal(err)
	}
	previewField := func(values func() ([]float64, error)) field.Generator {
		return func(context.Context) (field.Field, error) {
			v, err := values()
			if err != nil {
				return nil, err
			}
			return &field.ScalarGrid{Grid: grid, Values: v}, nil
		}
	}
	errNoBatch := errors.New("no batch evaluated yet. step once first")

	fields := map[string]field.Generator{
		"prediction": previewField(func() ([]float64, error) {
			if preview.input == nil {
				return nil, errNoBatch
			}
			return applyStencil(kernel.Values, preview.input, gridW, gridH), nil
		}),
		"target": previewField(func() ([]float64, error) {
			if preview.target == nil {
				return nil, errNoBatch
			}
			return preview.target, nil
		}),
		"error": previewField(func() ([]float64, error) {
			if preview.input == nil {
				return nil, errNoBatch
			}
			pred := applyStencil(kernel.Values, preview.input, gridW, gridH)
			diff := make([]float64, len(pred))
			for i := range pred {
				diff[i] = pred[i] - preview.target[i]
			}
			return diff, nil
		}),
	}
	for name, gen := range fields {
		if err := a.AddField(name, gen); err != nil {
			log.Fatal(err)
		}
	}

	if err := a.AddAction("print kernel", func(context.Context) error {
		for row := 0; row < 3; row++ {
			log.Printf("%+.4f %+.4f %+.4f",
				kernel.Values[row*3], kernel.Values[row*3+1], kernel.Values[row*3+2])
		}
		return nil
	}); err != nil {
		log.Fatal(err)
	}

	err = viewer.Show(ctx, a, conf, viewer.WithLoglevel(*loglevel))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
