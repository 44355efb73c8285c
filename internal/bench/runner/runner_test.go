package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/engine"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/spec"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testQrels = `1 0 d1 1
1 0 d2 0
1 0 d3 1
2 0 d4 1
`
	testRunA = `1 Q0 d1 1 2.0 a
1 Q0 d2 2 1.0 a
2 Q0 d4 1 1.0 a
`
	testRunB = `1 Q0 d3 1 3.0 b
1 Q0 d1 2 2.0 b
`
	testTopics = `
name: tiny
topics:
  - id: "1"
    query: first need
  - id: "2"
    query: second need
`
	testJob = `
name: tiny
qrels: qrels.txt
measures: [map, P_5]
topics: topics.yaml
engines:
  live:
    type: api
    connection: http://unused
runs:
  - name: a
    path: a.txt
  - name: b
    path: b.txt
  - name: gone
    path: missing.txt
  - name: live
    engine: live
fusions:
  - name: rrf-ab
    method: rrf
    runs: [a, b]
pools:
  - name: top1
    strategy:
      name: topX
      top_x: 1
    runs: [a, b]
    output: pool.yaml
`
)

type stubExecutor struct {
	hits map[string][]engine.Hit
}

func (s stubExecutor) Execute(_ context.Context, query string, _ int) (*engine.Execution, error) {
	return &engine.Execution{Hits: s.hits[query], Latency: 2 * time.Millisecond}, nil
}
func (s stubExecutor) Name() string { return "live" }
func (s stubExecutor) Close() error { return nil }

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestRunSpec(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"qrels.txt":   testQrels,
		"a.txt":       testRunA,
		"b.txt":       testRunB,
		"topics.yaml": testTopics,
		"job.yaml":    testJob,
	})
	s, err := spec.LoadFromFile(filepath.Join(dir, "job.yaml"))
	require.NoError(t, err)
	cfg, err := ConfigFromSpec(s)
	require.NoError(t, err)

	executors := map[string]engine.Executor{
		"live": stubExecutor{hits: map[string][]engine.Hit{
			"first need": {{DocID: "d3", Score: 1}},
		}},
	}

	br, err := New(cfg).RunSpec(context.Background(), s, executors)
	require.NoError(t, err)

	ids := make([]string, len(br.Runs))
	for i, r := range br.Runs {
		ids[i] = r.RunID
	}
	assert.Equal(t, []string{"a", "b", "gone", "live", "rrf-ab"}, ids)

	failures := br.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "gone", failures[0].RunID)
	assert.Equal(t, SourceFile, failures[0].Source)

	a := br.Runs[0].Relation
	require.NotNil(t, a)
	mapA, ok := a.Get("map", "all")
	require.True(t, ok)
	assert.InDelta(t, 0.75, mapA, 1e-9)

	mapB, _ := br.Runs[1].Relation.Get("map", "all")
	assert.InDelta(t, 0.5, mapB, 1e-9)

	live := br.Runs[3]
	assert.Equal(t, SourceEngine, live.Source)
	require.NotNil(t, live.Latency)
	assert.Equal(t, 2, live.Latency.SampleCount)
	require.NotNil(t, live.Relation)
	assert.Equal(t, "live", live.Relation.RunID)

	assert.Equal(t, SourceFusion, br.Runs[4].Source)
	assert.Equal(t, "rrf-ab", br.Runs[4].Relation.RunID)

	assert.Len(t, br.Relations(), 4)

	require.Len(t, br.Pools, 1)
	pf, err := pool.ReadPoolFile(filepath.Join(dir, "pool.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d3"}, pf.Pool().Docs("1"))
	assert.Equal(t, []string{"d4"}, pf.Pool().Docs("2"))
}

func TestRunSpecMissingQrels(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt":    testRunA,
		"job.yaml": "qrels: nope.txt\nruns:\n  - name: a\n    path: a.txt\n",
	})
	s, err := spec.LoadFromFile(filepath.Join(dir, "job.yaml"))
	require.NoError(t, err)

	_, err = New(DefaultConfig()).RunSpec(context.Background(), s, nil)
	assert.ErrorContains(t, err, "load qrels")
}

func TestEvaluateKeepsOrder(t *testing.T) {
	qrels, err := trec.NewQrels([]trec.Judgment{{Query: "1", DocID: "d1", Relevance: 1}})
	require.NoError(t, err)

	var runs []*trec.Run
	for _, name := range []string{"r1", "r2", "r3", "r4", "r5"} {
		run, err := trec.NewRun(name, []trec.Record{{Query: "1", DocID: "d1", Rank: 1, Score: 1}})
		require.NoError(t, err)
		runs = append(runs, run)
	}

	cfg := DefaultConfig()
	cfg.Concurrency = 2
	cfg.Measures = []string{"recip_rank"}
	results, err := New(cfg).Evaluate(context.Background(), qrels, runs)
	require.NoError(t, err)

	require.Len(t, results, 5)
	for i, res := range results {
		assert.Equal(t, runs[i].System(), res.RunID)
		v, ok := res.Relation.Get("recip_rank", "all")
		assert.True(t, ok)
		assert.Equal(t, 1.0, v)
	}
}

func TestEvaluateCancelled(t *testing.T) {
	qrels, err := trec.NewQrels(nil)
	require.NoError(t, err)
	run, err := trec.NewRun("r", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(DefaultConfig()).Evaluate(ctx, qrels, []*trec.Run{run})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunSpecUtility(t *testing.T) {
	job := `
name: utility
qrels: qrels.txt
measures: [urbp_0.8, ubpref]
utility:
  qrels: understandability.txt
runs:
  - name: a
    path: a.txt
`
	dir := writeFiles(t, map[string]string{
		"qrels.txt":             testQrels,
		"understandability.txt": "1 0 d1 2\n2 0 d4 1\n",
		"a.txt":                 testRunA,
		"job.yaml":              job,
	})
	s, err := spec.LoadFromFile(filepath.Join(dir, "job.yaml"))
	require.NoError(t, err)
	cfg, err := ConfigFromSpec(s)
	require.NoError(t, err)

	br, err := New(cfg).RunSpec(context.Background(), s, nil)
	require.NoError(t, err)
	require.NoError(t, br.Runs[0].Err)

	// query 1: d1 at rank 1 graded 2; query 2: d4 at rank 1 graded 1.
	urbp, ok := br.Runs[0].Relation.Get("urbp_0.80", "all")
	require.True(t, ok)
	assert.InDelta(t, (0.4+0.2)/2, urbp, 1e-9)
	_, ok = br.Runs[0].Relation.Get("ubpref", "all")
	assert.True(t, ok)

	t.Run("missing utility qrels aborts", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(dir, "understandability.txt")))
		_, err := New(cfg).RunSpec(context.Background(), s, nil)
		assert.ErrorContains(t, err, "load utility qrels")
	})
}
