package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	binderr "github.com/plumelab/plume/pkg/api/errors"
	"github.com/plumelab/plume/pkg/app"
)

// ScalarResponse answers GET /api/scalars/:name.
type ScalarResponse struct {
	Steps    []int     `json:"steps"`
	Values   []float64 `json:"values"`
	Smoothed []float64 `json:"smoothed"`
}

// GetScalarHandler serves one summary curve.
//
//	GET /api/scalars/:name?smooth=K&since=S
//
// smooth applies a centered uniform window of width K; since drops
// points before step S (for incremental polling).
func GetScalarHandler(src ScalarSource, paramName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param(paramName)

		smooth := 1
		if q := c.QueryParam("smooth"); q != "" {
			k, err := strconv.Atoi(q)
			if err != nil || k < 1 {
				return binderr.BadRequest(`query parameter "smooth" should be a positive integer`, err)
			}
			smooth = k
		}
		since := 0
		if q := c.QueryParam("since"); q != "" {
			s, err := strconv.Atoi(q)
			if err != nil {
				return binderr.BadRequest(`query parameter "since" should be an integer`, err)
			}
			since = s
		}

		curve, err := src.Scalar(name)
		if err != nil {
			if errors.Is(err, app.ErrUnknown) || errors.Is(err, fs.ErrNotExist) {
				return binderr.NotFound()
			}
			return binderr.InternalServerError(err)
		}

		curve = curve.Since(since)
		return c.JSON(http.StatusOK, ScalarResponse{
			Steps:    curve.Steps,
			Values:   curve.Values,
			Smoothed: curve.Smoothed(smooth),
		})
	}
}
