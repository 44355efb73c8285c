package trecfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRun = `1 Q0 d1 1 2.5 bm25
1 Q0 d2 2 1.5 bm25

2 Q0 d3 1 0.7 bm25
10 Q0 d4 1 3 bm25
`

func TestReadRun(t *testing.T) {
	run, err := ReadRun(strings.NewReader(sampleRun), "")
	require.NoError(t, err)
	assert.Equal(t, "bm25", run.System())
	assert.Equal(t, 4, run.Len())
	assert.Equal(t, []string{"1", "2", "10"}, run.Queries())

	named, err := ReadRun(strings.NewReader(sampleRun), "custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", named.System())
}

func TestReadRunRejectsMalformedLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few columns", "1 Q0 d1 1 2.5\n"},
		{"bad rank", "1 Q0 d1 first 2.5 s\n"},
		{"bad score", "1 Q0 d1 1 high s\n"},
		{"duplicate docid", "1 Q0 d1 1 2 s\n1 Q0 d1 2 1 s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRun(strings.NewReader(tt.input), "")
			var ve *apperr.ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}
}

func TestWriteRunNormalizes(t *testing.T) {
	run, err := trec.NewRun("sys", []trec.Record{
		{Query: "1", DocID: "a", Rank: 7, Score: 1},
		{Query: "1", DocID: "b", Rank: 3, Score: 2},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRun(&buf, run, trec.TieBreakDocIDDesc))
	assert.Equal(t, "1 Q0 b 1 2 sys\n1 Q0 a 2 1 sys\n", buf.String())

	back, err := ReadRun(&buf, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, back.TopDocuments("1", 2))
}

func TestRunFileNamedAfterPathWhenSystemMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bm25.run")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	run, err := ReadRunFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bm25", run.System())
	assert.Zero(t, run.Len())
}

func TestReadQrels(t *testing.T) {
	input := "1 0 d1 1\n1 0 d2 0\n1 0 d3 -1\n2 0 d4 2\n"
	q, err := ReadQrels(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, q.Len())
	assert.False(t, q.Grade("1", "d3").Judged)
	assert.Equal(t, 2, q.Grade("2", "d4").Rel)

	var buf bytes.Buffer
	require.NoError(t, WriteQrels(&buf, q))
	assert.Equal(t, "1 0 d1 1\n1 0 d2 0\n2 0 d4 2\n", buf.String())
}

func TestReadQrelsRejectsDuplicates(t *testing.T) {
	_, err := ReadQrels(strings.NewReader("1 0 d1 1\n1 0 d1 0\n"))
	var ve *apperr.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestRelationRoundTrip(t *testing.T) {
	rel := metrics.NewRelation("bm25")
	rel.Add("num_q", metrics.AllQueries, 2)
	rel.Add("map", "1", 0.5)
	rel.Add("map", metrics.AllQueries, 0.25)

	var buf bytes.Buffer
	require.NoError(t, WriteRelation(&buf, rel))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "runid                 \tall\tbm25", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "\tall\t2"))
	assert.True(t, strings.HasSuffix(lines[3], "\tall\t0.2500"))

	back, err := ReadRelation(&buf)
	require.NoError(t, err)
	assert.Equal(t, "bm25", back.RunID)
	v, ok := back.Get("map", metrics.AllQueries)
	require.True(t, ok)
	assert.InDelta(t, 0.25, v, 1e-9)
	assert.Equal(t, []string{"num_q", "map"}, back.Metrics())
}
