// Package viewer serves the browser GUI of an application.
//
// Show is the entry point of every user program:
//
//	a := app.New("Smoke Plume")
//	// ... register fields, objectives, data ...
//	viewer.Show(ctx, a, conf)
//
// It prepares the app (scene directory, description), wires the run
// registry when one is configured, and serves the GUI until ctx is
// done. The GUI polls JSON endpoints under /api; everything mutating
// can be protected with bearer tokens.
package viewer

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/plumelab/plume/pkg/app"
	cviewer "github.com/plumelab/plume/pkg/configs/viewer"
	kdb "github.com/plumelab/plume/pkg/db"
	"github.com/plumelab/plume/pkg/db/flush"
	"github.com/plumelab/plume/pkg/db/postgres"
	"github.com/plumelab/plume/pkg/utils/echoutil"
	"github.com/plumelab/plume/pkg/viewer/handlers"
)

//go:embed web/index.html
var indexHTML []byte

type options struct {
	logger     *log.Logger
	loglevel   string
	database   kdb.Database
	runnerOpts []app.RunnerOption
}

type Option func(*options)

// WithLogger sets the viewer's logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLoglevel sets the HTTP log level (debug|info|warn|error|off).
func WithLoglevel(level string) Option {
	return func(o *options) { o.loglevel = level }
}

// WithDatabase injects a run registry, instead of connecting to the
// configured DSN.
func WithDatabase(d kdb.Database) Option {
	return func(o *options) { o.database = d }
}

// WithRunnerOptions passes options to the step runner.
func WithRunnerOptions(opts ...app.RunnerOption) Option {
	return func(o *options) { o.runnerOpts = append(o.runnerOpts, opts...) }
}

// Show prepares a and serves its GUI until ctx is done.
func Show(ctx context.Context, a *app.App, conf cviewer.Config, opts ...Option) error {
	o := options{
		logger:   log.Default(),
		loglevel: "info",
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := a.Prepare(ctx); err != nil {
		return err
	}

	// the registry is best-effort: without one (or with a broken one)
	// the app still shows, scenes on disk keep the full record
	database := o.database
	if database == nil && conf.Database != "" {
		d, err := postgres.New(ctx, conf.Database)
		if err != nil {
			o.logger.Printf("run registry unavailable: %s", err)
		} else {
			database = d
			defer d.Close()
		}
	}

	var runs kdb.RunInterface
	var curves kdb.CurveInterface
	finish := func(kdb.RunStatus) {}
	if database != nil {
		runs = database.Runs()
		curves = database.Curves()

		runId, err := runs.Register(ctx, kdb.RunSpec{
			Name:     a.Name(),
			Subtitle: a.Subtitle(),
			SceneDir: a.Scene().Dir(),
		})
		if err != nil {
			o.logger.Printf("run registration failed: %s", err)
		} else {
			flusher := flush.Start(ctx, curves, runId, flush.WithLogger(o.logger))
			a.SetRecorder(flusher)
			finish = func(status kdb.RunStatus) {
				graceful, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := flusher.Close(graceful); err != nil {
					o.logger.Printf("final curve flush failed: %s", err)
				}
				if err := runs.Finish(graceful, runId, status); err != nil {
					o.logger.Printf("finishing run %s failed: %s", runId, err)
				}
			}
		}
	}

	runner := app.NewRunner(a, append(
		[]app.RunnerOption{app.WithRunnerLogger(o.logger)}, o.runnerOpts...,
	)...)

	e := echo.New()
	echoutil.SetLevel(e, o.loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	guard := echo.MiddlewareFunc(nil)
	if conf.Auth.Enabled {
		auth, err := NewTokenAuth(conf.Auth.Secret, conf.Auth.TTL)
		if err != nil {
			return err
		}
		token, err := auth.Issue(time.Now())
		if err != nil {
			return err
		}
		o.logger.Printf("GUI auth token: %s", token)
		guard = auth.Middleware()
	}

	Routes(e, a, runner, runs, curves, conf.MaxResolution, guard)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(fmt.Sprintf(":%d", conf.Port))
	}()
	o.logger.Printf("%q is live at http://localhost:%d (scene: %s)", a.Name(), conf.Port, a.Scene().Dir())

	var serveErr error
	select {
	case <-ctx.Done():
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			o.logger.Printf("error on shutdown: %s", err)
		}
		<-errCh
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	runner.Close()
	status := kdb.Done
	if serveErr != nil {
		status = kdb.Failed
	}
	finish(status)

	if err := a.Close(); err != nil {
		o.logger.Printf("error closing the app: %s", err)
	}
	return serveErr
}

// Routes registers the viewer API on e. guard, when non-nil, protects
// every mutating endpoint.
func Routes(
	e *echo.Echo,
	a *app.App,
	runner *app.Runner,
	runs kdb.RunInterface,
	curves kdb.CurveInterface,
	maxRes int,
	guard echo.MiddlewareFunc,
) {
	protected := []echo.MiddlewareFunc{}
	if guard != nil {
		protected = append(protected, guard)
	}

	e.GET("/", func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, indexHTML)
	})

	api := e.Group("/api")
	api.GET("/app", handlers.GetAppHandler(a, runner))

	api.POST("/control/play", handlers.PlayHandler(runner), protected...)
	api.POST("/control/pause", handlers.PauseHandler(runner), protected...)
	api.POST("/control/step", handlers.StepHandler(runner), protected...)

	api.GET("/fields/:name", handlers.GetFieldHandler(a, "name", maxRes))
	api.GET("/scalars/:name", handlers.GetScalarHandler(a, "name"))
	api.POST("/actions/:name", handlers.PostActionHandler(a, "name"), protected...)

	api.GET("/controls/:name", handlers.GetControlHandler(a, "name"))
	api.PUT("/controls/:name", handlers.PutControlHandler(a, "name"), protected...)

	api.GET("/checkpoints", handlers.ListCheckpointsHandler(a))
	api.POST("/checkpoints", handlers.SaveCheckpointHandler(a), protected...)
	api.POST("/checkpoints/:id/restore", handlers.RestoreCheckpointHandler(a, "id"), protected...)

	api.GET("/runs", handlers.FindRunsHandler(runs))
	api.GET("/runs/:id/scalars", handlers.GetRunCurveNamesHandler(runs, curves, "id"))
	api.GET("/runs/:id/scalars/:name", handlers.GetRunCurveHandler(runs, curves, "id", "name"))
}
