package model

import "time"

// RunStatus enumerates the lifecycle of a pipeline run.
type RunStatus string

const (
	RunStatusIdle      RunStatus = "idle"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one pipeline execution, persisted for the status endpoint.
type Run struct {
	ID         string     `json:"id"`
	Status     RunStatus  `json:"status"`
	Success    *bool      `json:"success,omitempty"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	LeadsCollected int `json:"leads_collected"`
	LeadsExported  int `json:"leads_exported"`
}

// RunSummary carries the stage counters reported at the end of a run.
type RunSummary struct {
	Collected int `json:"collected"`
	Filtered  int `json:"filtered"`
	Enriched  int `json:"enriched"`
	Deduped   int `json:"deduped"`
	Exported  int `json:"exported"`
	Synced    int `json:"synced"`
}
