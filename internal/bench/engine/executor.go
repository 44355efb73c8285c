package engine

import (
	"context"
	"time"
)

// Executor sends one query to a live retrieval system.
type Executor interface {
	Execute(ctx context.Context, query string, depth int) (*Execution, error)
	Name() string
	Close() error
}

type Hit struct {
	DocID string
	Score float64
}

// Execution lists hits in the order the system returned them.
type Execution struct {
	Hits         []Hit
	TotalMatches int64
	Latency      time.Duration
}

// scoreByPosition gives descending synthetic scores to hits whose system
// reported none, so the canonical order matches the returned order.
func scoreByPosition(hits []Hit) {
	for i := range hits {
		hits[i].Score = float64(len(hits) - i)
	}
}
