package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusOK, ParseStatus("OK"))
	assert.Equal(t, StatusNotFound, ParseStatus("nao-encontrado"))
	assert.Equal(t, StatusError, ParseStatus("erro"))
	assert.Equal(t, StatusPending, ParseStatus(""))
	assert.Equal(t, StatusPending, ParseStatus("algo-estranho"))
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusOK.Terminal())
	assert.True(t, StatusNotFound.Terminal())
	assert.True(t, StatusError.Terminal())
}

func TestComputeStats(t *testing.T) {
	records := []TermRecord{
		{Status: StatusOK},
		{Status: StatusOK},
		{Status: StatusNotFound},
		{Status: StatusError},
		{Status: StatusPending},
	}

	stats := ComputeStats(records)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 4, stats.Processed)
	assert.Equal(t, 2, stats.Found)
	assert.Equal(t, 1, stats.NotFound)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Pending)
	assert.InDelta(t, 50.0, stats.SuccessRate, 0.001)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.SuccessRate)
}
