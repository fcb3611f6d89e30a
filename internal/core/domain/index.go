package domain

import "time"

// IndexState is the lifecycle state of corpus indexing.
type IndexState string

// Index states.
const (
	IndexStateNotStarted IndexState = "not_started"
	IndexStateInProgress IndexState = "in_progress"
	IndexStateComplete   IndexState = "complete"
	IndexStateFailed     IndexState = "failed"
)

// String returns the string representation.
func (s IndexState) String() string {
	return string(s)
}

// IsTerminal returns true for states that end a run.
func (s IndexState) IsTerminal() bool {
	return s == IndexStateComplete || s == IndexStateFailed
}

// IndexStatus is a point-in-time view of the indexing task.
type IndexStatus struct {
	State IndexState `json:"state"`

	// Reason explains a failed state.
	Reason string `json:"reason,omitempty"`

	// RunID identifies the current or last run.
	RunID string `json:"run_id,omitempty"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// DocumentsAdded is the number of documents written by the last run,
	// or restored from disk at startup.
	DocumentsAdded int `json:"documents_added"`
}

// DatasetCategory identifies one upstream dataset feeding the index.
type DatasetCategory string

// Dataset categories.
const (
	DatasetCropProduction DatasetCategory = "crop_production"
	DatasetRainfall       DatasetCategory = "rainfall"
)

// IndexRun is the persisted record of one indexing run.
type IndexRun struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	State      IndexState `json:"state"`
	Reason     string     `json:"reason,omitempty"`

	// Documents counts added documents per dataset category.
	Documents map[DatasetCategory]int `json:"documents"`

	// Skipped lists categories that failed to fetch and were skipped.
	Skipped []DatasetCategory `json:"skipped,omitempty"`
}

// TotalDocuments sums documents across categories.
func (r IndexRun) TotalDocuments() int {
	total := 0
	for _, n := range r.Documents {
		total += n
	}
	return total
}
