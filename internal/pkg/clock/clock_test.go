package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock_Add(t *testing.T) {
	start := time.Date(2023, 3, 5, 23, 59, 0, 0, time.UTC)
	clk := NewMockClock(start)

	assert.Equal(t, start, clk.Now())

	clk.Add(2 * time.Minute)
	assert.Equal(t, time.Date(2023, 3, 6, 0, 1, 0, 0, time.UTC), clk.Now())
}

func TestReal(t *testing.T) {
	before := time.Now()
	now := Real().Now()
	assert.False(t, now.Before(before))
}
