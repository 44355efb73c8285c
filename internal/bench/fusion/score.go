package fusion

import (
	"log/slog"
	"slices"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	MethodSum = "sum"
	MethodMax = "max"
	MethodMin = "min"
	MethodANZ = "anz"
	MethodMNZ = "mnz"
	MethodMed = "med"
)

var ScoreMethods = []string{MethodSum, MethodMax, MethodMin, MethodANZ, MethodMNZ, MethodMed}

// tieBreak ranks each input run before rank-based fusion.
const tieBreak = trec.TieBreakDocIDAsc

// reducer folds the present scores of one document. It is never called with
// an empty slice.
type reducer func(present []float64) float64

var reducers = map[string]reducer{
	MethodSum: floats.Sum,
	MethodMax: floats.Max,
	MethodMin: floats.Min,
	MethodANZ: func(v []float64) float64 { return stat.Mean(v, nil) },
	MethodMNZ: func(v []float64) float64 { return floats.Sum(v) * float64(len(v)) },
	MethodMed: median,
}

// Combine fuses runs by reducing each document's scores across runs. Runs
// that did not retrieve a document are skipped by the reducer rather than
// counted as 0.
func Combine(runs []*trec.Run, method string, limit trec.MaxDocs) (*trec.Run, error) {
	if len(runs) == 0 {
		return nil, apperr.NewEmptyInput("", "no runs to fuse")
	}
	reduce, ok := reducers[method]
	if !ok {
		return nil, apperr.NewConfiguration("fusion method", method, ScoreMethods...)
	}

	byQuery := make(map[string][]trec.Entry)
	for _, q := range pool.UnionQueries(runs) {
		scores := make(map[string]float64)
		for doc, col := range join(runs, q) {
			scores[doc] = reduce(present(col))
		}
		byQuery[q] = limit.Apply(q, pool.RankWeights(scores))
	}

	return emit("comb_"+method, byQuery)
}

// join lines up every run's score for each document of query. Absent
// documents get trec.NullScore.
func join(runs []*trec.Run, query string) map[string][]trec.Score {
	cols := make(map[string][]trec.Score)
	for i, run := range runs {
		for _, e := range run.Entries(query) {
			col, ok := cols[e.DocID]
			if !ok {
				col = make([]trec.Score, len(runs))
				cols[e.DocID] = col
			}
			col[i] = trec.ScoreOf(e.Score)
		}
	}
	return cols
}

func present(col []trec.Score) []float64 {
	vals := make([]float64, 0, len(col))
	for _, s := range col {
		if s.Present {
			vals = append(vals, s.Value)
		}
	}
	return vals
}

// median averages the two middle values of an even-length input.
func median(v []float64) float64 {
	sorted := slices.Clone(v)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func emit(label string, byQuery map[string][]trec.Entry) (*trec.Run, error) {
	run, err := trec.NewRunFromEntries(label, byQuery)
	if err != nil {
		return nil, err
	}
	slog.Debug("Runs fused", "label", label, "queries", len(byQuery), "documents", run.Len())
	return run, nil
}
