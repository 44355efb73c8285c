package engine

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

type LatencyStats struct {
	Min         time.Duration         `json:"min"`
	Max         time.Duration         `json:"max"`
	Mean        time.Duration         `json:"mean"`
	Median      time.Duration         `json:"median"`
	Stddev      time.Duration         `json:"stddev"`
	Percentiles map[int]time.Duration `json:"percentiles"`
	SampleCount int                   `json:"sample_count"`
	Raw         []time.Duration       `json:"-"`
}

var defaultPercentiles = []int{50, 75, 90, 95, 99}

// ComputeLatencyStats summarizes query latencies. Percentiles are empirical:
// the smallest sample whose cumulative share reaches p.
func ComputeLatencyStats(durations []time.Duration) LatencyStats {
	if len(durations) == 0 {
		return LatencyStats{
			Percentiles: make(map[int]time.Duration),
		}
	}

	sorted := make([]float64, len(durations))
	for i, d := range durations {
		sorted[i] = float64(d)
	}
	slices.Sort(sorted)

	stats := LatencyStats{
		Min:         time.Duration(sorted[0]),
		Max:         time.Duration(sorted[len(sorted)-1]),
		Median:      percentile(sorted, 50),
		Percentiles: make(map[int]time.Duration),
		SampleCount: len(durations),
		Raw:         durations,
	}

	mean, std := stat.MeanStdDev(sorted, nil)
	stats.Mean = time.Duration(mean)
	if len(sorted) > 1 {
		stats.Stddev = time.Duration(std)
	}

	for _, p := range defaultPercentiles {
		stats.Percentiles[p] = percentile(sorted, p)
	}

	return stats
}

func percentile(sorted []float64, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return time.Duration(sorted[0])
	}
	return time.Duration(stat.Quantile(float64(p)/100, stat.Empirical, sorted, nil))
}

func AggregateLatencyStats(stats []LatencyStats) LatencyStats {
	var all []time.Duration
	for _, s := range stats {
		all = append(all, s.Raw...)
	}
	return ComputeLatencyStats(all)
}

func (s LatencyStats) P50() time.Duration { return s.Percentiles[50] }
func (s LatencyStats) P95() time.Duration { return s.Percentiles[95] }
func (s LatencyStats) P99() time.Duration { return s.Percentiles[99] }

func (s LatencyStats) IsZero() bool {
	return s.SampleCount == 0
}
