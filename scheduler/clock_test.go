package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"energy_auction/scheduler"
	"energy_auction/scheduler/mock"
)

// 底层时钟回拨后MonotonicClock停在上一次的读数
func TestMonotonicClockNeverRewinds(t *testing.T) {
	start := time.Unix(100, 0)
	source := mock.NewClock(start)
	mc := scheduler.NewMonotonicClock(source)

	assert.Equal(t, start, mc.Now())

	source.Advance(5 * time.Second)
	assert.Equal(t, start.Add(5*time.Second), mc.Now())

	source.Set(start)
	assert.Equal(t, start.Add(5*time.Second), mc.Now())

	source.Set(start.Add(6 * time.Second))
	assert.Equal(t, start.Add(6*time.Second), mc.Now())
}

func TestMockClockIgnoresNegativeAdvance(t *testing.T) {
	start := time.Unix(100, 0)
	c := mock.NewClock(start)
	assert.Equal(t, start, c.Advance(-time.Second))
	assert.Equal(t, start.Add(time.Second), c.Advance(time.Second))
}
