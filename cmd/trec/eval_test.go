package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/spec"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalFlagsRunnerConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f := evalFlags{
			measures:    []string{"map", "P_10"},
			perQuery:    true,
			tieBreak:    "docid_asc",
			graded:      true,
			binary:      false,
			concurrency: 2,
		}
		cfg, err := f.runnerConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"map", "P_10"}, cfg.Measures)
		assert.True(t, cfg.PerQuery)
		assert.Equal(t, trec.TieBreakDocIDAsc, cfg.Options.TieBreak)
		assert.True(t, cfg.Options.Graded)
		assert.False(t, cfg.Options.Binary)
		assert.Equal(t, 2, cfg.Concurrency)
	})

	t.Run("measure aliases", func(t *testing.T) {
		cfg, err := evalFlags{measures: []string{"rbp_0.8", "ndcg_cut_1000"}, tieBreak: "docid_desc"}.runnerConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"rbp_0.80", "ndcg"}, cfg.Measures)
	})

	t.Run("utility measure needs utility qrels", func(t *testing.T) {
		_, err := evalFlags{measures: []string{"urbp_0.8"}}.runnerConfig()
		assert.ErrorContains(t, err, "--utility-qrels")

		cfg, err := evalFlags{measures: []string{"urbp_0.8"}, utilityQrels: "u.txt"}.runnerConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"urbp_0.80"}, cfg.Measures)
	})

	t.Run("unknown measure", func(t *testing.T) {
		_, err := evalFlags{measures: []string{"mrr"}}.runnerConfig()
		var ce *apperr.ConfigurationError
		assert.True(t, errors.As(err, &ce))
	})

	t.Run("unknown tie break", func(t *testing.T) {
		_, err := evalFlags{measures: []string{"map"}, tieBreak: "random"}.runnerConfig()
		assert.Error(t, err)
	})
}

func TestDefaultOutput(t *testing.T) {
	s := &spec.EvalSpec{Name: "robust04", Output: spec.Output{Dir: "out"}}

	assert.Equal(t, filepath.Join("out", "robust04.json"), defaultOutput(s, spec.FormatJSON))
	assert.Equal(t, "out", defaultOutput(s, spec.FormatTrec))
	assert.Empty(t, defaultOutput(s, spec.FormatTable))
	assert.Empty(t, defaultOutput(&spec.EvalSpec{}, spec.FormatJSON))
}
