package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{name: "nil ports", ports: nil, wantErr: ErrMissingAnswerService},
		{name: "missing answer", ports: &Ports{Index: &mockIndexService{}}, wantErr: ErrMissingAnswerService},
		{name: "answer only", ports: &Ports{Answer: &mockAnswerService{}}},
		{name: "all ports", ports: &Ports{Answer: &mockAnswerService{}, Index: &mockIndexService{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
