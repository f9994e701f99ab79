// Command smokedemo shows an interactive smoke simulation.
//
// A buoyant plume rises from a spherical inflow; the GUI exposes the
// density and velocity fields, an inflow rate slider and a reset
// action. No parameters are trained, the app is pure simulation.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/plumelab/plume/pkg/app"
	"github.com/plumelab/plume/pkg/blob"
	cviewer "github.com/plumelab/plume/pkg/configs/viewer"
	"github.com/plumelab/plume/pkg/control"
	"github.com/plumelab/plume/pkg/data"
	"github.com/plumelab/plume/pkg/field"
	"github.com/plumelab/plume/pkg/geom"
	"github.com/plumelab/plume/pkg/sim"
	"github.com/plumelab/plume/pkg/utils/args"
	"github.com/plumelab/plume/pkg/utils/filewatch"
	"github.com/plumelab/plume/pkg/viewer"
)

const dt = 0.5

func main() {
	configPath := flag.String("config", "", "viewer config path")
	port := flag.Int("port", 0, "override the configured port")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	precision := args.Parser(blob.ParseDType)
	flag.Var(precision, "precision", "recorded frame precision. float32|float64")
	flag.Parse()

	conf, err := cviewer.Load(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}
	if *port != 0 {
		conf.Port = *port
	}
	if precision.IsSet() {
		conf.Record.Precision = precision.Value()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *configPath != "" {
		watched, cancelWatch, err := filewatch.UntilModifyContext(ctx, *configPath)
		if err != nil {
			log.Fatalf("can not watch configuration: %s", err)
		}
		defer cancelWatch()
		ctx = watched
		context.AfterFunc(ctx, func() {
			log.Println("config file updated. quit to restart.")
		})
	}

	box := geom.Box{Upper: geom.Vec2{X: 0.75, Y: 1}}
	grid, err := geom.NewGrid(96, 128, box)
	if err != nil {
		log.Fatalf("bad domain: %s", err)
	}
	inflow := geom.Sphere{
		Center: geom.Vec2{X: 0.375, Y: 0.08},
		Radius: 0.05,
	}
	smoke := sim.NewSmoke(grid, inflow)

	a := app.New(
		"Smoke Plume",
		append(
			viewer.AppOptions(conf),
			app.WithSubtitle("buoyant smoke in a closed box"),
			app.WithStep(func(ctx context.Context, _ data.Batch) error {
				smoke.Step(dt)
				return nil
			}),
		)...,
	)

	if err := a.AddField("density", func(context.Context) (field.Field, error) {
		return smoke.Density(), nil
	}); err != nil {
		log.Fatal(err)
	}
	if err := a.AddField("velocity", func(context.Context) (field.Field, error) {
		return smoke.Velocity(), nil
	}); err != nil {
		log.Fatal(err)
	}

	if err := a.AddControl(control.Float(
		"inflow rate", 0, 2,
		smoke.InflowRate,
		smoke.SetInflowRate,
	)); err != nil {
		log.Fatal(err)
	}
	if err := a.AddAction("reset", func(context.Context) error {
		smoke.Reset()
		return nil
	}); err != nil {
		log.Fatal(err)
	}

	err = viewer.Show(ctx, a, conf, viewer.WithLoglevel(*loglevel))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
