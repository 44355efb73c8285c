package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/engine"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/runner"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/trecfile"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relation(runID string, mapAll, p5 float64) *metrics.Relation {
	rel := metrics.NewRelation(runID)
	rel.Add("map", "1", mapAll)
	rel.Add("num_q", metrics.AllQueries, 1)
	rel.Add("map", metrics.AllQueries, mapAll)
	rel.Add("P_5", metrics.AllQueries, p5)
	return rel
}

func testBatch() *runner.BatchResult {
	latency := engine.ComputeLatencyStats([]time.Duration{time.Millisecond, 3 * time.Millisecond})
	cfg := runner.DefaultConfig()
	cfg.Measures = []string{"map", "P_5"}
	cfg.PerQuery = true

	return &runner.BatchResult{
		Name: "robust",
		Runs: []runner.RunResult{
			{RunID: "bm25", Source: runner.SourceFile, Relation: relation("bm25", 0.25, 0.4)},
			{RunID: "broken", Source: runner.SourceFile, Err: errors.New("open run file: no such file")},
			{RunID: "es", Source: runner.SourceEngine, Relation: relation("es", 0.5, 0.2), Latency: &latency},
		},
		Pools: []*pool.PoolFile{{
			Name:     "depth1",
			Strategy: pool.Strategy{Name: pool.StrategyTopX, TopX: 1},
			Queries: []pool.PoolEntry{
				{QueryID: "1", Docs: []pool.PooledDoc{{DocID: "d1"}, {DocID: "d2"}}},
			},
		}},
		Config: cfg,
	}
}

func TestGenerate(t *testing.T) {
	r := Generate(testBatch())

	assert.Equal(t, "robust", r.Meta.Name)
	require.Len(t, r.Systems, 3)
	assert.Equal(t, 0.25, r.Systems[0].Summary["map"])
	assert.Len(t, r.Systems[0].PerQuery, 1)
	assert.Equal(t, "open run file: no such file", r.Systems[1].Error)
	assert.Nil(t, r.Systems[1].Summary)

	require.Len(t, r.Ranking, 2)
	assert.Equal(t, "es", r.Ranking[0].RunID)
	assert.Equal(t, 1, r.Ranking[0].Rank)
	assert.Equal(t, 0.5, *r.Ranking[0].Value)
	assert.Equal(t, "bm25", r.Ranking[1].RunID)

	require.Len(t, r.Pools, 1)
	assert.Equal(t, PoolSummary{Name: "depth1", Strategy: "topX", Queries: 1, Docs: 2}, r.Pools[0])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(Generate(testBatch()), &buf)
	out := buf.String()

	assert.Contains(t, out, "=== robust ===")
	assert.Contains(t, out, "Ranking by map")
	assert.Contains(t, out, "0.2500")
	assert.Contains(t, out, "ERR: open run file")
	assert.Contains(t, out, "Latency Statistics")
	assert.Contains(t, out, "depth1")
	assert.Contains(t, out, "Per-Query Results")
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(Generate(testBatch()), &buf))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []string{"map", "P_5"}, decoded.Measures)
	assert.Equal(t, 0.5, decoded.Systems[2].Summary["map"])
	assert.Equal(t, 2, decoded.Systems[2].Latency.SampleCount)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSON(Generate(testBatch()), path))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteTrec(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTrec(testBatch(), &buf))

	rel, err := trecfile.ReadRelation(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	v, ok := rel.Get("P_5", metrics.AllQueries)
	assert.True(t, ok)
	assert.InDelta(t, 0.4, v, 1e-9)

	dir := filepath.Join(t.TempDir(), "evals")
	require.NoError(t, WriteTrecDir(testBatch(), dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGenerateUsesResultNamesForMeasures(t *testing.T) {
	qrels, err := trecfile.ReadQrels(strings.NewReader("1 0 d1 1\n1 0 d2 0\n"))
	require.NoError(t, err)
	run, err := trecfile.ReadRun(strings.NewReader("1 Q0 d1 1 2.0 a\n1 Q0 d2 2 1.0 a\n"), "a")
	require.NoError(t, err)

	cfg := runner.DefaultConfig()
	cfg.Measures = []string{"rbp_0.8", "ndcg_cut_1000", "map"}
	cfg.PerQuery = true

	results, err := runner.New(cfg).Evaluate(context.Background(), qrels, []*trec.Run{run})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	r := Generate(&runner.BatchResult{Name: "aliases", Runs: results, Config: cfg})
	assert.Equal(t, []string{"rbp_0.80", "ndcg", "map"}, r.Measures)
	assert.InDelta(t, 0.2, r.Systems[0].Summary["rbp_0.80"], 1e-9)
	assert.InDelta(t, 1.0, r.Systems[0].Summary["ndcg"], 1e-9)

	require.Len(t, r.Ranking, 1)
	require.NotNil(t, r.Ranking[0].Value)
	assert.InDelta(t, 0.2, *r.Ranking[0].Value, 1e-9)

	var buf bytes.Buffer
	WriteTable(r, &buf)
	out := buf.String()
	assert.Contains(t, out, "Ranking by rbp_0.80")
	assert.NotContains(t, out, "N/A")
	assert.Contains(t, out, "ndcg")
}
