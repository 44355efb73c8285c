package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestComputeLatencyStats_Empty(t *testing.T) {
	stats := ComputeLatencyStats(nil)
	assert.Zero(t, stats.Min)
	assert.Zero(t, stats.Max)
	assert.Zero(t, stats.Mean)
	assert.True(t, stats.IsZero())
}

func TestComputeLatencyStats_SingleValue(t *testing.T) {
	stats := ComputeLatencyStats([]time.Duration{ms(10)})

	assert.Equal(t, ms(10), stats.Min)
	assert.Equal(t, ms(10), stats.Max)
	assert.Equal(t, ms(10), stats.Mean)
	assert.Equal(t, ms(10), stats.Median)
	assert.Equal(t, 1, stats.SampleCount)
	assert.Zero(t, stats.Stddev)
	assert.False(t, stats.IsZero())
}

func TestComputeLatencyStats_Unsorted(t *testing.T) {
	stats := ComputeLatencyStats([]time.Duration{ms(50), ms(10), ms(30), ms(20), ms(40)})

	assert.Equal(t, ms(10), stats.Min)
	assert.Equal(t, ms(50), stats.Max)
	assert.Equal(t, ms(30), stats.Mean)
	assert.Equal(t, ms(30), stats.Median)
	assert.Equal(t, 5, stats.SampleCount)
}

func TestComputeLatencyStats_Percentiles(t *testing.T) {
	durations := make([]time.Duration, 100)
	for i := range durations {
		durations[i] = ms(i + 1)
	}
	stats := ComputeLatencyStats(durations)

	assert.Equal(t, ms(50), stats.P50())
	assert.Equal(t, ms(75), stats.Percentiles[75])
	assert.Equal(t, ms(95), stats.P95())
	assert.Equal(t, ms(99), stats.P99())
}

func TestComputeLatencyStats_Stddev(t *testing.T) {
	flat := ComputeLatencyStats([]time.Duration{ms(100), ms(100), ms(100)})
	assert.Zero(t, flat.Stddev)

	spread := ComputeLatencyStats([]time.Duration{ms(10), ms(20), ms(30)})
	assert.Equal(t, ms(10), spread.Stddev)
}

func TestAggregateLatencyStats(t *testing.T) {
	a := ComputeLatencyStats([]time.Duration{ms(10), ms(20)})
	b := ComputeLatencyStats([]time.Duration{ms(30), ms(40)})

	agg := AggregateLatencyStats([]LatencyStats{a, b})
	assert.Equal(t, ms(10), agg.Min)
	assert.Equal(t, ms(40), agg.Max)
	assert.Equal(t, 4, agg.SampleCount)
	assert.Equal(t, ms(25), agg.Mean)

	assert.True(t, AggregateLatencyStats(nil).IsZero())
}
