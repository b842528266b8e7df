package pipeline

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/behonest/leads-cli/internal/model"
)

// maxMessageLen bounds the status message exposed by the trigger API.
const maxMessageLen = 500

// Status tracks the in-process run state for the trigger API. At most one
// run is active at a time; TryStart is the gate.
type Status struct {
	mu        sync.Mutex
	running   bool
	lastRun   *model.Run
	startedAt time.Time
}

// Snapshot is the status view served over HTTP.
type Snapshot struct {
	Running        bool       `json:"running"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	LastStatus     string     `json:"last_status,omitempty"`
	LastMessage    string     `json:"last_message,omitempty"`
	LastFinishedAt *time.Time `json:"last_finished_at,omitempty"`
	LeadsExported  int        `json:"leads_exported,omitempty"`
}

// NewStatus creates a Status seeded with the last persisted run, so status
// reports survive restarts. last may be nil.
func NewStatus(last *model.Run) *Status {
	return &Status{lastRun: last}
}

// TryStart marks a run as active. It reports false when a run is already in
// flight.
func (s *Status) TryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.startedAt = time.Now()
	return true
}

// Finish records the run outcome and releases the busy gate.
func (s *Status) Finish(run *model.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if run != nil {
		s.lastRun = run
	}
}

// Snapshot returns the current status view.
func (s *Status) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Running: s.running}
	if s.running {
		t := s.startedAt
		snap.StartedAt = &t
	}
	if s.lastRun != nil {
		snap.LastStatus = string(s.lastRun.Status)
		snap.LastMessage = truncate(s.lastRun.Message, maxMessageLen)
		snap.LastFinishedAt = s.lastRun.FinishedAt
		snap.LeadsExported = s.lastRun.LeadsExported
	}
	return snap
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
