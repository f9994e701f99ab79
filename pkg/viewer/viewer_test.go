package viewer_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/plumelab/plume/pkg/app"
	"github.com/plumelab/plume/pkg/data"
	"github.com/plumelab/plume/pkg/train"
	"github.com/plumelab/plume/pkg/utils/try"
	"github.com/plumelab/plume/pkg/viewer"
	"github.com/plumelab/plume/pkg/viewer/handlers"
)

// newTestApp builds a minimal trainable app: one parameter, one
// quadratic objective.
func newTestApp(t *testing.T) *app.App {
	t.Helper()

	a := app.New(
		"Routes Test",
		app.WithSceneRoot(t.TempDir(), "test"),
		app.WithValidationInterval(0),
		app.WithLogger(log.New(io.Discard, "", 0)),
	)
	w := try.To(a.ModelScope().Add("w", []int{1}, []float64{2})).OrFatal(t)
	if err := a.AddObjective("fit", func(ctx context.Context, _ data.Batch) (float64, train.Grads, error) {
		v := w.Values[0]
		return v * v, train.Grads{"model/w": []float64{2 * v}}, nil
	}); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestRoutes(t *testing.T) {
	t.Run("when the API is assembled, then app, step and scalar endpoints work end to end", func(t *testing.T) {
		a := newTestApp(t)
		defer a.Close()
		if err := a.Prepare(context.Background()); err != nil {
			t.Fatal(err)
		}
		runner := app.NewRunner(a, app.WithRunnerLogger(log.New(io.Discard, "", 0)))
		defer runner.Close()

		e := echo.New()
		viewer.Routes(e, a, runner, nil, nil, 256, nil)

		do := func(method, target string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, target, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			return rec
		}

		if rec := do(http.MethodGet, "/api/app"); rec.Code != http.StatusOK {
			t.Fatalf("GET /api/app: status %d", rec.Code)
		}

		if rec := do(http.MethodPost, "/api/control/step"); rec.Code != http.StatusOK {
			t.Fatalf("POST /api/control/step: status %d: %s", rec.Code, rec.Body)
		}

		rec := do(http.MethodGet, "/api/app")
		resp := handlers.AppResponse{}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Step != 1 {
			t.Errorf("step after one step: got %d, expected 1", resp.Step)
		}

		if rec := do(http.MethodGet, "/api/scalars/fit"); rec.Code != http.StatusOK {
			t.Errorf("GET /api/scalars/fit: status %d", rec.Code)
		}

		// no registry configured
		if rec := do(http.MethodGet, "/api/runs"); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET /api/runs: status %d, expected 503", rec.Code)
		}

		if rec := do(http.MethodGet, "/"); rec.Code != http.StatusOK {
			t.Errorf("GET /: status %d", rec.Code)
		}
	})

	t.Run("when a guard is installed, then mutating endpoints demand a token and reads stay open", func(t *testing.T) {
		a := newTestApp(t)
		defer a.Close()
		if err := a.Prepare(context.Background()); err != nil {
			t.Fatal(err)
		}
		runner := app.NewRunner(a, app.WithRunnerLogger(log.New(io.Discard, "", 0)))
		defer runner.Close()

		auth := try.To(viewer.NewTokenAuth("test-secret", time.Hour)).OrFatal(t)
		e := echo.New()
		viewer.Routes(e, a, runner, nil, nil, 256, auth.Middleware())

		req := httptest.NewRequest(http.MethodPost, "/api/control/step", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("unauthenticated step: status %d, expected 401", rec.Code)
		}

		token := try.To(auth.Issue(time.Now())).OrFatal(t)
		req = httptest.NewRequest(http.MethodPost, "/api/control/step", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("authenticated step: status %d, expected 200: %s", rec.Code, rec.Body)
		}

		req = httptest.NewRequest(http.MethodGet, "/api/app", nil)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("unauthenticated read: status %d, expected 200", rec.Code)
		}
	})
}
