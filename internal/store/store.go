// Package store persists pipeline run history so the trigger API can report
// the last run across restarts. Two backends: SQLite for local use, Postgres
// for shared deployments.
package store

import (
	"context"

	"github.com/behonest/leads-cli/internal/model"
)

// Store defines the run-history persistence interface.
type Store interface {
	// CreateRun records a run in the running state and returns it.
	CreateRun(ctx context.Context) (*model.Run, error)

	// CompleteRun marks a run finished with its outcome and counters.
	CompleteRun(ctx context.Context, runID string, success bool, message string, summary model.RunSummary) error

	// LastRun returns the most recently started run, or nil when none exist.
	LastRun(ctx context.Context) (*model.Run, error)

	// ListRuns returns up to limit runs, most recent first.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
