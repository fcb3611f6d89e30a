package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexState_IsTerminal(t *testing.T) {
	assert.False(t, IndexStateNotStarted.IsTerminal())
	assert.False(t, IndexStateInProgress.IsTerminal())
	assert.True(t, IndexStateComplete.IsTerminal())
	assert.True(t, IndexStateFailed.IsTerminal())
}

func TestIndexRun_TotalDocuments(t *testing.T) {
	run := IndexRun{Documents: map[DatasetCategory]int{
		DatasetCropProduction: 120,
		DatasetRainfall:       30,
	}}

	assert.Equal(t, 150, run.TotalDocuments())
	assert.Equal(t, 0, IndexRun{}.TotalDocuments())
}
