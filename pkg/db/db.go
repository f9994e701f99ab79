// Package db defines the run registry: a database of past and running
// application runs and their scalar curves.
//
// The registry is optional. Scenes on disk are always the primary
// record; when a database is configured, runs and curves are mirrored
// there so they can be queried across machines and after scene
// directories are gone.
package db

import (
	"context"
	"time"
)

type RunStatus string

const (
	Running RunStatus = "running"
	Done    RunStatus = "done"
	Failed  RunStatus = "failed"
)

// RunSpec describes a run at registration time.
type RunSpec struct {
	// Name of the application.
	Name string

	// Subtitle of the application, if any.
	Subtitle string

	// SceneDir is the scene directory holding the run's files.
	SceneDir string
}

// Run is one registered run.
type Run struct {
	RunId      string     `json:"run_id"`
	Name       string     `json:"name"`
	Subtitle   string     `json:"subtitle,omitempty"`
	SceneDir   string     `json:"scene_dir"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunFindQuery narrows Find. Nil/empty members match everything.
type RunFindQuery struct {
	// Name matches runs of the application with this exact name.
	Name *string

	// Status matches runs in any of these statuses.
	Status []RunStatus

	// Since matches runs started at or after this time.
	Since *time.Time
}

// Point is one recorded scalar value.
type Point struct {
	Step  int     `json:"step"`
	Value float64 `json:"value"`
}

// Curve is the recorded history of one scalar of one run.
type Curve struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

type RunInterface interface {
	// Register records a new run in status Running.
	//
	// Returns the new run's id.
	Register(ctx context.Context, spec RunSpec) (string, error)

	// Finish moves a run out of status Running and stamps its finish time.
	Finish(ctx context.Context, runId string, status RunStatus) error

	// Find lists runs matching the query, newest first.
	Find(ctx context.Context, q RunFindQuery) ([]Run, error)

	// Get fetches runs by id. Missing ids are left out of the result.
	Get(ctx context.Context, runIds []string) (map[string]Run, error)
}

type CurveInterface interface {
	// Append adds points to the named curve of a run.
	//
	// Re-appending a step already recorded is not an error; the first
	// recorded value wins. This makes flush retries safe.
	Append(ctx context.Context, runId string, name string, points []Point) error

	// Get reads the named curve, points at steps >= since, step order.
	Get(ctx context.Context, runId string, name string, since int) (Curve, error)

	// Names lists the curves recorded for a run, sorted.
	Names(ctx context.Context, runId string) ([]string, error)
}

type Database interface {
	Runs() RunInterface
	Curves() CurveInterface
	Close() error
}
