// Package state persists per-file extraction output and analysis run history
// in SQLite.
//
// The store is a cache: a file whose content hash is unchanged reuses its
// stored dependency records instead of being parsed again. The module graph
// itself is never stored; it is rebuilt from records on every run.
package state

import (
	"time"

	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

// RunStatus represents the state of an analysis run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one discovery + analysis pass.
type Run struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FilesTotal  int        `json:"files_total"`
	Modules     int        `json:"modules"`
	Violations  int        `json:"violations"`
	Error       string     `json:"error,omitempty"`
}

// Duration returns how long the run took, or zero while it is still running.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// RunStats are the counts recorded when a run completes.
type RunStats struct {
	FilesTotal int
	Modules    int
}

// FileEntry is the cached extraction output of one source file.
type FileEntry struct {
	Path        string                      `json:"path"`
	ContentHash string                      `json:"content_hash"`
	Records     []modgraph.DependencyRecord `json:"records"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}
