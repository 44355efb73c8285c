package pool

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRun(t *testing.T, system string, byQuery map[string][]string) *trec.Run {
	t.Helper()
	var records []trec.Record
	for q, ids := range byQuery {
		for i, id := range ids {
			records = append(records, trec.Record{Query: q, DocID: id, Rank: i + 1, Score: float64(len(ids) - i)})
		}
	}
	run, err := trec.NewRun(system, records)
	require.NoError(t, err)
	return run
}

func TestBuildTopX(t *testing.T) {
	a := newRun(t, "a", map[string][]string{"1": {"d1", "d2", "d3"}, "2": {"x"}})
	b := newRun(t, "b", map[string][]string{"1": {"d2", "d4", "d5"}})

	t.Run("merges and deduplicates", func(t *testing.T) {
		p, err := Build([]*trec.Run{a, b}, Strategy{Name: StrategyTopX, TopX: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"d1", "d2", "d4"}, p.Docs("1"))
		assert.Equal(t, []string{"x"}, p.Docs("2"))
	})

	t.Run("respects cutoff", func(t *testing.T) {
		p, err := Build([]*trec.Run{a}, Strategy{Name: StrategyTopX, TopX: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, p.Size("1"))
	})

	t.Run("empty input gives empty pool", func(t *testing.T) {
		p, err := Build(nil, Strategy{Name: StrategyTopX})
		require.NoError(t, err)
		assert.Zero(t, p.Len())
	})
}

func TestBuildRBP(t *testing.T) {
	a := newRun(t, "a", map[string][]string{"1": {"d1", "d2", "d3"}})
	b := newRun(t, "b", map[string][]string{"1": {"d3", "d2", "d1"}})
	c := newRun(t, "c", map[string][]string{"1": {"d2", "d9"}})

	t.Run("sum rewards agreement", func(t *testing.T) {
		p, err := Build([]*trec.Run{a, b, c}, Strategy{Name: StrategyRBP, TopX: 1, P: 0.5, Combine: CombineSum})
		require.NoError(t, err)
		// d2: .25+.25+.5 = 1.0 beats d1/d3: .5+.125 each.
		assert.Equal(t, []string{"d2"}, p.Docs("1"))
	})

	t.Run("max keeps the best single weight", func(t *testing.T) {
		p, err := Build([]*trec.Run{a, b, c}, Strategy{Name: StrategyRBP, TopX: 3, P: 0.5, Combine: CombineMax})
		require.NoError(t, err)
		// d1, d2 and d3 all reach .5; d9 only .25.
		assert.Equal(t, []string{"d1", "d2", "d3"}, p.Docs("1"))
	})

	t.Run("unknown combine mode", func(t *testing.T) {
		_, err := Build([]*trec.Run{a}, Strategy{Name: StrategyRBP, Combine: "avg"})
		var ce *apperr.ConfigurationError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "avg", ce.Name)
	})
}

func TestBuildRRF(t *testing.T) {
	a := newRun(t, "a", map[string][]string{"1": {"d1", "d2"}})
	b := newRun(t, "b", map[string][]string{"1": {"d2", "d3"}})

	p, err := Build([]*trec.Run{a, b}, Strategy{Name: StrategyRRF, TopX: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"d2"}, p.Docs("1"))

	assert.InDelta(t, 1.0/61.0+1.0/62.0, rrfWeights([]*trec.Run{a, b}, "1", 60)["d2"], 1e-12)

	t.Run("k defaults only when unset", func(t *testing.T) {
		assert.Equal(t, DefaultK, *Strategy{Name: StrategyRRF}.WithDefaults().K)

		zero := 0
		s := Strategy{Name: StrategyRRF, K: &zero}.WithDefaults()
		assert.Equal(t, 0, *s.K)

		p, err := Build([]*trec.Run{a, b}, Strategy{Name: StrategyRRF, TopX: 2, K: &zero})
		require.NoError(t, err)
		// k=0: d2 scores 1/2+1/1, d1 scores 1/1, d3 scores 1/2.
		assert.ElementsMatch(t, []string{"d1", "d2"}, p.Docs("1"))
	})

	t.Run("negative k", func(t *testing.T) {
		k := -1
		_, err := Build([]*trec.Run{a, b}, Strategy{Name: StrategyRRF, K: &k})
		var ve *apperr.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
}

func TestBuildUnknownStrategy(t *testing.T) {
	_, err := Build(nil, Strategy{Name: "borda"})
	var ce *apperr.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "pool strategy", ce.Kind)
}

func TestRankWeights(t *testing.T) {
	ranked := RankWeights(map[string]float64{"b": 1, "a": 1, "c": 2})
	require.Len(t, ranked, 3)
	assert.Equal(t, "c", ranked[0].DocID)
	assert.Equal(t, "a", ranked[1].DocID)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestPoolFileWriteRead(t *testing.T) {
	a := newRun(t, "pg", map[string][]string{"q1": {"d1", "d2"}})
	b := newRun(t, "es", map[string][]string{"q1": {"d1"}})
	s := Strategy{Name: StrategyTopX, TopX: 1}

	p, err := Build([]*trec.Run{a, b}, s)
	require.NoError(t, err)

	pf := NewPoolFile("test-pool", s, p, []*trec.Run{a, b})
	require.Len(t, pf.Queries, 1)
	assert.Equal(t, []string{"es", "pg"}, pf.Queries[0].Docs[0].Sources)

	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")

	err = WritePoolFile(pf, path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	loaded, err := ReadPoolFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test-pool", loaded.Name)
	assert.Equal(t, StrategyTopX, loaded.Strategy.Name)
	assert.Len(t, loaded.Queries, 1)
	assert.Equal(t, "q1", loaded.Queries[0].QueryID)
	assert.Equal(t, "d1", loaded.Queries[0].Docs[0].DocID)
	assert.True(t, loaded.Pool().Contains("q1", "d1"))
	assert.False(t, loaded.Pool().Contains("q1", "d2"))
}
