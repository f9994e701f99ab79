package postgres

import (
	"context"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4/pgxpool"
	kdb "github.com/plumelab/plume/pkg/db"
	xe "github.com/plumelab/plume/pkg/errors"
)

type pgCurves struct {
	pool *pgxpool.Pool
}

var _ kdb.CurveInterface = &pgCurves{}

func (c *pgCurves) Append(ctx context.Context, runId string, name string, points []kdb.Point) error {
	if len(points) == 0 {
		return nil
	}

	steps := make([]int32, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		steps[i] = int32(p.Step)
		values[i] = p.Value
	}

	stepArr := &pgtype.Int4Array{}
	if err := stepArr.Set(steps); err != nil {
		return xe.Wrap(err)
	}
	valueArr := &pgtype.Float8Array{}
	if err := valueArr.Set(values); err != nil {
		return xe.Wrap(err)
	}

	// idempotent under retry: a step recorded before keeps its value
	if _, err := c.pool.Exec(
		ctx,
		`
		INSERT INTO "curve_point" ("run_id", "name", "step", "value")
		SELECT $1, $2, unnest($3::int4[]), unnest($4::float8[])
		ON CONFLICT ("run_id", "name", "step") DO NOTHING
		`,
		runId, name, stepArr, valueArr,
	); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

func (c *pgCurves) Get(ctx context.Context, runId string, name string, since int) (kdb.Curve, error) {
	rows, err := c.pool.Query(
		ctx,
		`
		SELECT "step", "value" FROM "curve_point"
		WHERE "run_id" = $1 AND "name" = $2 AND "step" >= $3
		ORDER BY "step"
		`,
		runId, name, since,
	)
	if err != nil {
		return kdb.Curve{}, xe.Wrap(err)
	}
	defer rows.Close()

	curve := kdb.Curve{Name: name, Points: []kdb.Point{}}
	for rows.Next() {
		p := kdb.Point{}
		if err := rows.Scan(&p.Step, &p.Value); err != nil {
			return kdb.Curve{}, xe.Wrap(err)
		}
		curve.Points = append(curve.Points, p)
	}
	if err := rows.Err(); err != nil {
		return kdb.Curve{}, xe.Wrap(err)
	}
	return curve, nil
}

func (c *pgCurves) Names(ctx context.Context, runId string) ([]string, error) {
	rows, err := c.pool.Query(
		ctx,
		`SELECT DISTINCT "name" FROM "curve_point" WHERE "run_id" = $1 ORDER BY "name"`,
		runId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, xe.Wrap(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return names, nil
}
