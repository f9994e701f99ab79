package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	kdb "github.com/plumelab/plume/pkg/db"
	xe "github.com/plumelab/plume/pkg/errors"
	"github.com/plumelab/plume/pkg/utils/slices"
)

type pgRuns struct {
	pool *pgxpool.Pool
}

var _ kdb.RunInterface = &pgRuns{}

func (r *pgRuns) Register(ctx context.Context, spec kdb.RunSpec) (string, error) {
	runId, err := newRunId()
	if err != nil {
		return "", err
	}

	if _, err := r.pool.Exec(
		ctx,
		`
		INSERT INTO "run" ("run_id", "name", "subtitle", "scene_dir", "status")
		VALUES ($1, $2, $3, $4, $5)
		`,
		runId, spec.Name, spec.Subtitle, spec.SceneDir, string(kdb.Running),
	); err != nil {
		return "", xe.Wrap(err)
	}
	return runId, nil
}

func (r *pgRuns) Finish(ctx context.Context, runId string, status kdb.RunStatus) error {
	tag, err := r.pool.Exec(
		ctx,
		`
		UPDATE "run" SET "status" = $1, "finished_at" = now()
		WHERE "run_id" = $2 AND "status" = $3
		`,
		string(status), runId, string(kdb.Running),
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return xe.New(fmt.Sprintf("run %s is not running (or not found)", runId))
	}
	return nil
}

const runColumns = `"run_id", "name", "subtitle", "scene_dir", "status", "started_at", "finished_at"`

func scanRun(rows pgx.Rows) (kdb.Run, error) {
	run := kdb.Run{}
	finished := pgtype.Timestamptz{}
	if err := rows.Scan(
		&run.RunId, &run.Name, &run.Subtitle, &run.SceneDir,
		&run.Status, &run.StartedAt, &finished,
	); err != nil {
		return kdb.Run{}, xe.Wrap(err)
	}
	if finished.Status == pgtype.Present {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}

func (r *pgRuns) Find(ctx context.Context, q kdb.RunFindQuery) ([]kdb.Run, error) {
	where := []string{}
	args := []interface{}{}

	if q.Name != nil {
		args = append(args, *q.Name)
		where = append(where, fmt.Sprintf(`"name" = $%d`, len(args)))
	}
	if 0 < len(q.Status) {
		args = append(args, slices.Map(q.Status, func(s kdb.RunStatus) string {
			return string(s)
		}))
		where = append(where, fmt.Sprintf(`"status" = any($%d)`, len(args)))
	}
	if q.Since != nil {
		args = append(args, *q.Since)
		where = append(where, fmt.Sprintf(`"started_at" >= $%d`, len(args)))
	}

	query := `SELECT ` + runColumns + ` FROM "run"`
	if 0 < len(where) {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY "started_at" DESC, "run_id"`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	runs := []kdb.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return runs, nil
}

func (r *pgRuns) Get(ctx context.Context, runIds []string) (map[string]kdb.Run, error) {
	if len(runIds) == 0 {
		return map[string]kdb.Run{}, nil
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+runColumns+` FROM "run" WHERE "run_id" = any($1)`,
		runIds,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	runs := map[string]kdb.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs[run.RunId] = run
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return runs, nil
}
