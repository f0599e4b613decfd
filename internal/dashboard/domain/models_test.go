package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSummaryGuardsDivide(t *testing.T) {
	assert.Equal(t, Summary{}, NewSummary(0, 0))

	s := NewSummary(300, 4)
	assert.Equal(t, 75.0, s.AvgOrderValue)
}

func TestTrailingDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 45, 0, 0, time.UTC)

	from, to := TrailingDays(now, 3)
	assert.Equal(t, time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), to)

	from, _ = TrailingDays(now, 0)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), from)
}
