package httpapi

import (
	"errors"

	"github.com/custodia-labs/samarth/internal/core/ports/driving"
)

// Errors returned when required ports are missing.
var (
	ErrMissingAnswerService = errors.New("httpapi: answer service is required")
	ErrMissingIndexService  = errors.New("httpapi: index service is required")
)

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Answer driving.AnswerService
	Index  driving.IndexService

	// Datasets is optional; without it catalogue search returns no results.
	Datasets driving.DatasetService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	return nil
}
