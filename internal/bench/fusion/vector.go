package fusion

import (
	"strings"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"gonum.org/v1/gonum/floats"
)

const (
	VectorSpaceLabel = "vector_space_fusion"

	distanceSmoothing = 0.1
)

// VectorSpace places each document at the vector of its per-run scores (0
// where a run lacks it) and ranks documents by closeness to a pivot, scoring
// 1/(distance+0.1).
//
// The pivot is the document with the highest score in the first run only.
// Reordering runs can therefore change the result.
func VectorSpace(runs []*trec.Run, limit trec.MaxDocs) (*trec.Run, error) {
	if len(runs) == 0 {
		return nil, apperr.NewEmptyInput("", "no runs to fuse")
	}

	byQuery := make(map[string][]trec.Entry)
	for _, q := range pool.UnionQueries(runs) {
		vectors := make(map[string][]float64)
		for doc, col := range join(runs, q) {
			v := make([]float64, len(col))
			for i, s := range col {
				if s.Present {
					v[i] = s.Value
				}
			}
			vectors[doc] = v
		}

		pivot := vectors[pivotDoc(vectors)]
		scores := make(map[string]float64, len(vectors))
		for doc, v := range vectors {
			scores[doc] = 1.0 / (floats.Distance(v, pivot, 2) + distanceSmoothing)
		}
		byQuery[q] = limit.Apply(q, pool.RankWeights(scores))
	}

	return emit(VectorSpaceLabel, byQuery)
}

// pivotDoc picks the highest first-run score, lowest docid on ties.
func pivotDoc(vectors map[string][]float64) string {
	best := ""
	for doc, v := range vectors {
		if best == "" || v[0] > vectors[best][0] || (v[0] == vectors[best][0] && strings.Compare(doc, best) < 0) {
			best = doc
		}
	}
	return best
}
