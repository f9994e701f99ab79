// Package postgres implements the run registry on PostgreSQL.
package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/jackc/pgx/v4/pgxpool"
	kdb "github.com/plumelab/plume/pkg/db"
	xe "github.com/plumelab/plume/pkg/errors"
)

type pgDatabase struct {
	pool   *pgxpool.Pool
	runs   *pgRuns
	curves *pgCurves
}

// New connects to dsn and brings the schema up to date.
func New(ctx context.Context, dsn string) (kdb.Database, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	if err := upgrade(ctx, pool); err != nil {
		pool.Close()
		return nil, xe.WrapWithNote("schema upgrade failed", err)
	}

	return &pgDatabase{
		pool:   pool,
		runs:   &pgRuns{pool: pool},
		curves: &pgCurves{pool: pool},
	}, nil
}

func (d *pgDatabase) Runs() kdb.RunInterface { return d.runs }

func (d *pgDatabase) Curves() kdb.CurveInterface { return d.curves }

func (d *pgDatabase) Close() error {
	d.pool.Close()
	return nil
}

// newRunId draws a random 128-bit hex id.
func newRunId() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", xe.Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}
