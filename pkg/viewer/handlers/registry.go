package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	binderr "github.com/plumelab/plume/pkg/api/errors"
	kdb "github.com/plumelab/plume/pkg/db"
	"github.com/plumelab/plume/pkg/utils/pointer"
	"github.com/plumelab/plume/pkg/utils/slices"
)

const adviceNoRegistry = "configure a database to browse past runs"

// FindRunsHandler queries the run registry.
//
//	GET /api/runs?name=&status=&since=
//
// runs is nil when no registry is configured; then the endpoint
// answers 503.
func FindRunsHandler(runs kdb.RunInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		if runs == nil {
			return binderr.ServiceUnavailable(adviceNoRegistry, nil)
		}

		query := kdb.RunFindQuery{}
		if name := c.QueryParam("name"); name != "" {
			query.Name = pointer.Ref(name)
		}
		if status := c.QueryParams()["status"]; 0 < len(status) {
			query.Status = slices.Map(status, func(s string) kdb.RunStatus {
				return kdb.RunStatus(s)
			})
		}
		if since := c.QueryParam("since"); since != "" {
			t, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return binderr.BadRequest(`query parameter "since" should be RFC3339`, err)
			}
			query.Since = pointer.Ref(t)
		}

		found, err := runs.Find(c.Request().Context(), query)
		if err != nil {
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, found)
	}
}

// GetRunCurveHandler reads one curve of a registered run.
//
//	GET /api/runs/:id/scalars/:name?since=S
func GetRunCurveHandler(runs kdb.RunInterface, curves kdb.CurveInterface, paramId, paramName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if curves == nil || runs == nil {
			return binderr.ServiceUnavailable(adviceNoRegistry, nil)
		}

		since := 0
		if q := c.QueryParam("since"); q != "" {
			s, err := strconv.Atoi(q)
			if err != nil {
				return binderr.BadRequest(`query parameter "since" should be an integer`, err)
			}
			since = s
		}

		ctx := c.Request().Context()
		runId := c.Param(paramId)

		known, err := runs.Get(ctx, []string{runId})
		if err != nil {
			return binderr.InternalServerError(err)
		}
		if _, ok := known[runId]; !ok {
			return binderr.NotFound()
		}

		curve, err := curves.Get(ctx, runId, c.Param(paramName), since)
		if err != nil {
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, curve)
	}
}

// GetRunCurveNamesHandler lists the curves recorded for a run.
//
//	GET /api/runs/:id/scalars
func GetRunCurveNamesHandler(runs kdb.RunInterface, curves kdb.CurveInterface, paramId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if curves == nil || runs == nil {
			return binderr.ServiceUnavailable(adviceNoRegistry, nil)
		}

		ctx := c.Request().Context()
		runId := c.Param(paramId)

		known, err := runs.Get(ctx, []string{runId})
		if err != nil {
			return binderr.InternalServerError(err)
		}
		if _, ok := known[runId]; !ok {
			return binderr.NotFound()
		}

		names, err := curves.Names(ctx, runId)
		if err != nil {
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, names)
	}
}
