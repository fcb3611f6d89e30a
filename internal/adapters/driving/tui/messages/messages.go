// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"time"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

// StatusPollInterval is how often indexing status is refreshed while a
// run is in progress.
const StatusPollInterval = 500 * time.Millisecond

// AnswerReceived carries the result of a question back to the model.
type AnswerReceived struct {
	Query    string
	Response domain.AnswerResponse
	Err      error
}

// IndexStarted reports the outcome of a request to start indexing.
// Started is false when a run was already in progress.
type IndexStarted struct {
	Status  domain.IndexStatus
	Started bool
}

// IndexStatusUpdated carries a polled indexing status.
type IndexStatusUpdated struct {
	Status domain.IndexStatus
}
