package runner

import (
	"slices"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/spec"
)

const DefaultConcurrency = spec.DefaultConcurrency

type Config struct {
	Measures    []string
	PerQuery    bool
	Options     metrics.Options
	Concurrency int
	Fetch       spec.Fetch
	// Utility serves the ubpref, urbp and alpha_urbp measures.
	Utility *metrics.Utility
}

func DefaultConfig() Config {
	return Config{
		Measures:    slices.Clone(metrics.SummaryMeasures),
		Options:     metrics.DefaultOptions(),
		Concurrency: DefaultConcurrency,
		Fetch: spec.Fetch{
			Depth:   spec.DefaultFetchDepth,
			Workers: spec.DefaultFetchWorkers,
		},
	}
}

// ConfigFromSpec takes measures, options and limits from a validated job.
func ConfigFromSpec(s *spec.EvalSpec) (Config, error) {
	opts, err := s.MetricOptions()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Measures:    s.Measures,
		PerQuery:    s.PerQuery,
		Options:     opts,
		Concurrency: s.Concurrency,
		Fetch:       s.Fetch,
	}, nil
}
