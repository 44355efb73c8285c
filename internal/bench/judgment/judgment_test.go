package judgment

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQrels(t *testing.T, judgments ...trec.Judgment) *trec.Qrels {
	t.Helper()
	q, err := trec.NewQrels(judgments)
	require.NoError(t, err)
	return q
}

func testPoolFile() *pool.PoolFile {
	return &pool.PoolFile{
		Name:     "p",
		Strategy: pool.Strategy{Name: pool.StrategyTopX, TopX: 2},
		Queries: []pool.PoolEntry{
			{QueryID: "1", Docs: []pool.PooledDoc{{DocID: "d1"}, {DocID: "d2"}}},
			{QueryID: "2", Docs: []pool.PooledDoc{{DocID: "d3"}}},
		},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judgments.yaml")
	require.NoError(t, ExportForAnnotation(testPoolFile(), path))

	jf, err := ImportAnnotations(path)
	require.NoError(t, err)
	assert.Equal(t, "manual", jf.Strategy)
	require.Len(t, jf.Queries, 2)
	assert.Equal(t, 3, jf.Pending())

	jf.Queries[0].Docs[0].Grade = 2
	q, err := jf.Qrels()
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, trec.Grade{Rel: 2, Judged: true}, q.Grade("1", "d1"))
	assert.False(t, q.Grade("1", "d2").Judged)
}

func TestImportAnnotationsMissingFile(t *testing.T) {
	_, err := ImportAnnotations(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestImportAnnotationsValidates(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"missing query id", "queries:\n  - docs:\n      - doc_id: d1\n        grade: 1\n", "no query_id"},
		{"missing doc id", "queries:\n  - query_id: \"1\"\n    docs:\n      - grade: 1\n", "without doc_id"},
		{"bad grade", "queries:\n  - query_id: \"1\"\n    docs:\n      - doc_id: d1\n        grade: -3\n", "invalid grade -3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "judgments.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			_, err := ImportAnnotations(path)
			var ve *apperr.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMerge(t *testing.T) {
	jf := &JudgmentFile{Queries: []JudgmentEntry{
		{QueryID: "1", Docs: []GradedDoc{{DocID: "d1", Grade: 0}, {DocID: "d2", Grade: Ungraded}}},
	}}
	base := newQrels(t,
		trec.Judgment{Query: "1", DocID: "d1", Relevance: 1},
		trec.Judgment{Query: "1", DocID: "d2", Relevance: 1},
	)

	merged, err := Merge(jf, base)
	require.NoError(t, err)
	assert.Equal(t, 0, merged.Grade("1", "d1").Rel)
	assert.Equal(t, 1, merged.Grade("1", "d2").Rel)

	alone, err := Merge(jf, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, alone.Len())
}

func TestCollectWithQrelsJudge(t *testing.T) {
	judge := QrelsJudge{Qrels: newQrels(t, trec.Judgment{Query: "1", DocID: "d2", Relevance: 1})}

	jf, err := Collect(context.Background(), judge, testPoolFile(), "qrels")
	require.NoError(t, err)
	assert.Equal(t, "qrels", jf.Strategy)
	assert.Equal(t, []GradedDoc{{DocID: "d1", Grade: Ungraded}, {DocID: "d2", Grade: 1}}, jf.Queries[0].Docs)
	assert.Equal(t, 2, jf.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Collect(ctx, judge, testPoolFile(), "qrels")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAgreement(t *testing.T) {
	a := newQrels(t,
		trec.Judgment{Query: "1", DocID: "d1", Relevance: 1},
		trec.Judgment{Query: "1", DocID: "d2", Relevance: 0},
		trec.Judgment{Query: "2", DocID: "d3", Relevance: 1},
		trec.Judgment{Query: "3", DocID: "d4", Relevance: 1},
	)
	b := newQrels(t,
		trec.Judgment{Query: "1", DocID: "d1", Relevance: 1},
		trec.Judgment{Query: "1", DocID: "d2", Relevance: 1},
		trec.Judgment{Query: "2", DocID: "d3", Relevance: 1},
	)

	report, err := Agreement(a, b)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Common)
	assert.InDelta(t, 2.0/3.0, report.Overall, 1e-9)
	assert.InDelta(t, 0.5, report.PerTopic["1"], 1e-9)
	assert.InDelta(t, 1.0, report.PerTopic["2"], 1e-9)
	assert.True(t, math.IsNaN(report.PerTopic["3"]))
}

func TestAgreementNoOverlap(t *testing.T) {
	a := newQrels(t, trec.Judgment{Query: "1", DocID: "d1", Relevance: 1})
	b := newQrels(t, trec.Judgment{Query: "1", DocID: "d2", Relevance: 1})

	report, err := Agreement(a, b)
	var se *apperr.ShapeMismatchError
	require.True(t, errors.As(err, &se))
	assert.True(t, math.IsNaN(report.Overall))

	k, err := CohenKappa(a, b)
	assert.Error(t, err)
	assert.True(t, math.IsNaN(k))
}

func TestCohenKappa(t *testing.T) {
	tests := []struct {
		name string
		x, y []int
		want float64
	}{
		// p0 = .75, pe = .5*.25 + .5*.75
		{"binary", []int{1, 1, 0, 0}, []int{1, 0, 0, 0}, 0.5},
		{"perfect", []int{0, 1, 2}, []int{0, 1, 2}, 1},
		// p0 = 0, pe = 3 * (1/3 * 1/3)
		{"graded chance level", []int{0, 1, 2}, []int{1, 2, 0}, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ja, jb []trec.Judgment
			for i := range tt.x {
				doc := string(rune('a' + i))
				ja = append(ja, trec.Judgment{Query: "1", DocID: doc, Relevance: tt.x[i]})
				jb = append(jb, trec.Judgment{Query: "1", DocID: doc, Relevance: tt.y[i]})
			}
			k, err := CohenKappa(newQrels(t, ja...), newQrels(t, jb...))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, k, 1e-9)
		})
	}
}

func TestCohenKappaSingleLabel(t *testing.T) {
	a := newQrels(t, trec.Judgment{Query: "1", DocID: "d1", Relevance: 1})
	k, err := CohenKappa(a, a)
	var ee *apperr.EmptyInputError
	require.True(t, errors.As(err, &ee))
	assert.True(t, math.IsNaN(k))
}

func TestConfusionMatrix(t *testing.T) {
	a := newQrels(t,
		trec.Judgment{Query: "1", DocID: "d1", Relevance: 1},
		trec.Judgment{Query: "1", DocID: "d2", Relevance: 0},
		trec.Judgment{Query: "1", DocID: "d3", Relevance: 2},
	)
	b := newQrels(t,
		trec.Judgment{Query: "1", DocID: "d1", Relevance: 1},
		trec.Judgment{Query: "1", DocID: "d2", Relevance: 1},
		trec.Judgment{Query: "1", DocID: "d3", Relevance: 2},
	)

	matrix, labels, err := ConfusionMatrix(a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, labels)
	assert.Equal(t, [][]int{{0, 1, 0}, {0, 1, 0}, {0, 0, 1}}, matrix)

	matrix, labels, err = ConfusionMatrix(a, b, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, labels)
	assert.Equal(t, [][]int{{0, 1}, {0, 1}}, matrix)
}

func TestFleissKappa(t *testing.T) {
	tests := []struct {
		name    string
		ratings [][]int
		want    float64
	}{
		{"full agreement", [][]int{{1, 0}, {1, 0}}, 1},
		// P = .5, Pe = 1/16 + 9/16
		{"partial", [][]int{{1, 0}, {0, 0}}, -1.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := FleissKappa(tt.ratings)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, k, 1e-9)
		})
	}
}

func TestFleissKappaErrors(t *testing.T) {
	_, err := FleissKappa([][]int{{1}})
	var se *apperr.ShapeMismatchError
	assert.True(t, errors.As(err, &se))

	_, err = FleissKappa([][]int{{1, 0}, {1}})
	assert.True(t, errors.As(err, &se))
}

func TestAlignAssessors(t *testing.T) {
	a := newQrels(t,
		trec.Judgment{Query: "1", DocID: "d1", Relevance: 1},
		trec.Judgment{Query: "1", DocID: "d2", Relevance: 0},
	)
	b := newQrels(t, trec.Judgment{Query: "1", DocID: "d1", Relevance: 0})

	assert.Equal(t, [][]int{{1}, {0}}, AlignAssessors(a, b))
}
