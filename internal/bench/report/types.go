package report

import (
	"runtime"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/engine"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/google/uuid"
)

type Report struct {
	Meta     Meta           `json:"meta"`
	Measures []string       `json:"measures"`
	Systems  []SystemReport `json:"systems"`
	// Ranking orders systems by the first measure.
	Ranking []RankedSystem `json:"ranking"`
	Pools   []PoolSummary  `json:"pools,omitempty"`
}

type Meta struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Timestamp   time.Time       `json:"timestamp"`
	PerQuery    bool            `json:"per_query"`
	Environment EnvironmentInfo `json:"environment"`
}

type EnvironmentInfo struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	NumCPU    int    `json:"num_cpu"`
}

func NewEnvironmentInfo() EnvironmentInfo {
	return EnvironmentInfo{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
	}
}

type SystemReport struct {
	RunID  string `json:"runid"`
	Source string `json:"source"`
	// Summary holds the aggregate ("all") value of each metric.
	Summary  map[string]float64   `json:"summary,omitempty"`
	PerQuery []metrics.Row        `json:"per_query,omitempty"`
	Latency  *engine.LatencyStats `json:"latency,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// RankedSystem carries a nil Value when the measure is undefined for the run.
type RankedSystem struct {
	Rank  int      `json:"rank"`
	RunID string   `json:"runid"`
	Value *float64 `json:"value"`
}

type PoolSummary struct {
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
	Queries  int    `json:"queries"`
	Docs     int    `json:"docs"`
}
