package viewer

import (
	"github.com/plumelab/plume/pkg/app"
	cviewer "github.com/plumelab/plume/pkg/configs/viewer"
)

// AppOptions translates a viewer configuration into app options, so
// user programs can build their app straight from the config file:
//
//	a := app.New("Smoke Plume", viewer.AppOptions(conf)...)
func AppOptions(conf cviewer.Config) []app.Option {
	opts := []app.Option{
		app.WithSceneRoot(conf.Scenes.Root, conf.Scenes.Category),
		app.WithPrecision(conf.Record.Precision),
		app.WithValidationInterval(conf.ValidationInterval),
		app.WithCheckpointInterval(conf.CheckpointInterval),
	}
	if 0 < conf.Record.FieldInterval {
		opts = append(opts, app.WithRecordedFields(conf.Record.FieldInterval, conf.Record.Fields...))
	}
	return opts
}
