// Package tui provides an interactive terminal chat for Samarth.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Answer answers questions. Required.
	Answer driving.AnswerService

	// Index starts indexing runs and reports their status. Optional;
	// without it the reindex key is disabled.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
