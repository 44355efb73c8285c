package runner

import (
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/engine"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
)

// Where a run came from.
const (
	SourceFile   = "file"
	SourceEngine = "engine"
	SourceFusion = "fusion"
	SourceMemory = "memory"
)

type RunResult struct {
	RunID    string
	Source   string
	Relation *metrics.Relation
	// Latency is set for runs fetched from an engine.
	Latency *engine.LatencyStats
	Err     error
}

func (r RunResult) Failed() bool { return r.Err != nil }

type BatchResult struct {
	Name   string
	Runs   []RunResult
	Pools  []*pool.PoolFile
	Config Config
}

// Relations returns the relations of every run that evaluated cleanly, in
// job order.
func (b *BatchResult) Relations() []*metrics.Relation {
	out := make([]*metrics.Relation, 0, len(b.Runs))
	for _, r := range b.Runs {
		if r.Relation != nil {
			out = append(out, r.Relation)
		}
	}
	return out
}

func (b *BatchResult) Failures() []RunResult {
	var out []RunResult
	for _, r := range b.Runs {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}
