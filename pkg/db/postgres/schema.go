package postgres

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4/pgxpool"
	xe "github.com/plumelab/plume/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// version reads the current schema version.
//
// A database without the version table is version 0 (fresh).
func version(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	var v int
	err := pool.QueryRow(
		ctx, `SELECT coalesce(max("version"), 0) FROM "schema_version"`,
	).Scan(&v)
	if err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
			if pgerr.Code == pgerrcode.UndefinedTable {
				return 0, nil
			}
		}
		return -1, xe.Wrap(err)
	}
	return v, nil
}

// upgrade applies the embedded schema when the database is behind.
// It is idempotent, so concurrent viewers can race it safely.
func upgrade(ctx context.Context, pool *pgxpool.Pool) error {
	current, err := version(ctx, pool)
	if err != nil {
		return err
	}
	if schemaVersion <= current {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return xe.Wrap(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM "schema_version"`); err != nil {
		return xe.Wrap(err)
	}
	if _, err := tx.Exec(
		ctx, `INSERT INTO "schema_version" ("version") VALUES ($1)`, schemaVersion,
	); err != nil {
		return xe.Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return xe.Wrap(err)
	}
	return nil
}
