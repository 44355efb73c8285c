package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/topic"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"golang.org/x/sync/errgroup"
)

type FetchOptions struct {
	Depth   int
	Workers int
	// Warmup queries are sent and discarded before timing starts.
	Warmup int
}

type FetchResult struct {
	Run     *trec.Run
	Latency LatencyStats
	// TotalMatches is what the engine reported per topic, before depth.
	TotalMatches map[string]int64
}

type topicHits struct {
	hits    []Hit
	total   int64
	latency LatencyStats
}

// Fetch sends every topic of set to exec and collects the hits into a run
// named after the executor. Topics run concurrently, bounded by Workers; the
// first failing topic cancels the rest.
func Fetch(ctx context.Context, exec Executor, set *topic.Set, opts FetchOptions) (*FetchResult, error) {
	if opts.Depth <= 0 {
		return nil, fmt.Errorf("fetch depth must be positive, got %d", opts.Depth)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]topicHits, len(set.Topics))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, t := range set.Topics {
		g.Go(func() error {
			query, err := set.Resolve(t, exec.Name(), opts.Depth)
			if err != nil {
				return fmt.Errorf("resolve topic %q: %w", t.ID, err)
			}

			for range opts.Warmup {
				_, _ = exec.Execute(gctx, query, opts.Depth)
			}

			res, err := exec.Execute(gctx, query, opts.Depth)
			if err != nil {
				return fmt.Errorf("topic %q on %s: %w", t.ID, exec.Name(), err)
			}

			results[i] = topicHits{
				hits:    res.Hits,
				total:   res.TotalMatches,
				latency: ComputeLatencyStats([]time.Duration{res.Latency}),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []trec.Record
	perTopic := make([]LatencyStats, 0, len(results))
	totals := make(map[string]int64, len(results))
	for i, t := range set.Topics {
		r := results[i]
		perTopic = append(perTopic, r.latency)
		totals[t.ID] = r.total

		seen := make(map[string]struct{}, len(r.hits))
		for _, h := range r.hits {
			if len(seen) >= opts.Depth {
				break
			}
			if _, dup := seen[h.DocID]; dup {
				slog.Warn("Duplicate hit dropped", "engine", exec.Name(), "topic", t.ID, "docid", h.DocID)
				continue
			}
			seen[h.DocID] = struct{}{}
			records = append(records, trec.Record{
				Query: t.ID,
				DocID: h.DocID,
				Rank:  len(seen),
				Score: h.Score,
			})
		}
	}

	run, err := trec.NewRun(exec.Name(), records)
	if err != nil {
		return nil, err
	}

	latency := AggregateLatencyStats(perTopic)
	slog.Info("Run fetched", "engine", exec.Name(), "topics", len(set.Topics), "docs", run.Len(), "p50", latency.P50())

	return &FetchResult{Run: run, Latency: latency, TotalMatches: totals}, nil
}
