package handlers_test

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	httptestutil "github.com/plumelab/plume/internal/testutils/http"
	"github.com/plumelab/plume/pkg/cmp"
	"github.com/plumelab/plume/pkg/scene"
	"github.com/plumelab/plume/pkg/viewer/handlers"
)

func TestGetScalarHandler(t *testing.T) {
	curve := scene.Curve{
		Steps:  []int{1, 2, 3, 4},
		Values: []float64{4, 2, 2, 4},
	}

	t.Run("when a curve exists, then its points and the smoothed trace are served", func(t *testing.T) {
		mapp := newMockApp()
		mapp.Impl.Scalar = func(name string) (scene.Curve, error) {
			if name != "fit" {
				t.Errorf("scalar name: got %q, expected %q", name, "fit")
			}
			return curve, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(e, "/api/scalars/fit?smooth=3")
		c.SetPath("/api/scalars/:name")
		c.SetParamNames("name")
		c.SetParamValues("fit")

		testee := handlers.GetScalarHandler(mapp, "name")
		if err := testee(c); err != nil {
			t.Fatal(err)
		}

		resp := handlers.ScalarResponse{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if !cmp.SliceEq(resp.Steps, curve.Steps) {
			t.Errorf("steps: got %v, expected %v", resp.Steps, curve.Steps)
		}
		if !cmp.SliceEq(resp.Values, curve.Values) {
			t.Errorf("values: got %v, expected %v", resp.Values, curve.Values)
		}
		if !cmp.SliceEq(resp.Smoothed, []float64{3, 8.0 / 3, 8.0 / 3, 3}) {
			t.Errorf("smoothed: got %v", resp.Smoothed)
		}
	})

	t.Run("when ?since is given, then earlier points are dropped", func(t *testing.T) {
		mapp := newMockApp()
		mapp.Impl.Scalar = func(name string) (scene.Curve, error) { return curve, nil }

		e := echo.New()
		c, respRec := httptestutil.Get(e, "/api/scalars/fit?since=3")
		c.SetPath("/api/scalars/:name")
		c.SetParamNames("name")
		c.SetParamValues("fit")

		if err := handlers.GetScalarHandler(mapp, "name")(c); err != nil {
			t.Fatal(err)
		}

		resp := handlers.ScalarResponse{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if !cmp.SliceEq(resp.Steps, []int{3, 4}) {
			t.Errorf("steps: got %v, expected [3 4]", resp.Steps)
		}
	})

	t.Run("when ?smooth is not a positive integer, then status code should be 400", func(t *testing.T) {
		mapp := newMockApp()

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/scalars/fit?smooth=0")
		c.SetPath("/api/scalars/:name")
		c.SetParamNames("name")
		c.SetParamValues("fit")

		err := handlers.GetScalarHandler(mapp, "name")(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusBadRequest {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusBadRequest)
		}
	})

	t.Run("when nothing is recorded under the name, then status code should be 404", func(t *testing.T) {
		mapp := newMockApp()
		mapp.Impl.Scalar = func(name string) (scene.Curve, error) {
			return scene.Curve{}, fs.ErrNotExist
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/scalars/nonsense")
		c.SetPath("/api/scalars/:name")
		c.SetParamNames("name")
		c.SetParamValues("nonsense")

		err := handlers.GetScalarHandler(mapp, "name")(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusNotFound {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusNotFound)
		}
	})
}
