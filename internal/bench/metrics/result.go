package metrics

import (
	"math"

	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"gonum.org/v1/gonum/stat"
)

// Result holds one metric over a judgment set's topic universe.
//
// Queries whose value is undefined (for example MAP with no relevant
// judgments) are listed in Undefined and never contribute to Mean. Mean is NaN
// when no query is defined.
type Result struct {
	Metric    string
	PerQuery  map[string]float64
	Undefined map[string]error
	Mean      float64
	Topics    int
}

// Value returns the per-query value; ok is false for undefined or unknown
// queries.
func (r Result) Value(query string) (float64, bool) {
	v, ok := r.PerQuery[query]
	return v, ok
}

// Aggregate returns the mean and whether at least one query was defined.
func (r Result) Aggregate() (float64, bool) {
	return r.Mean, len(r.PerQuery) > 0
}

// Queries lists the defined queries in natural order.
func (r Result) Queries() []string {
	qs := make([]string, 0, len(r.PerQuery))
	for q := range r.PerQuery {
		qs = append(qs, q)
	}
	trec.SortQueries(qs)
	return qs
}

type resultBuilder struct {
	res Result
}

func newResult(metric string, universe []string) *resultBuilder {
	return &resultBuilder{res: Result{
		Metric:    metric,
		PerQuery:  make(map[string]float64, len(universe)),
		Undefined: make(map[string]error),
		Topics:    len(universe),
	}}
}

func (b *resultBuilder) set(query string, v float64) {
	b.res.PerQuery[query] = v
}

func (b *resultBuilder) exclude(query string, err error) {
	b.res.Undefined[query] = err
}

func (b *resultBuilder) finish() Result {
	if len(b.res.PerQuery) == 0 {
		b.res.Mean = math.NaN()
		return b.res
	}
	qs := make([]string, 0, len(b.res.PerQuery))
	for q := range b.res.PerQuery {
		qs = append(qs, q)
	}
	trec.SortQueries(qs)
	values := make([]float64, len(qs))
	for i, q := range qs {
		values[i] = b.res.PerQuery[q]
	}
	b.res.Mean = stat.Mean(values, nil)
	return b.res
}
