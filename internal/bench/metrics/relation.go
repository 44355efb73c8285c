package metrics

import (
	"fmt"
	"math"
)

const (
	AllQueries = "all"
	RunIDRow   = "runid"
)

// SummaryMeasures is what EvaluateAll reports after the count rows.
var SummaryMeasures = []string{
	"map", "recip_rank", "bpref",
	"P_5", "P_10", "P_15", "P_20", "P_30", "P_100",
	"ndcg", "ndcg_cut_10", "unjudged_10",
}

type Row struct {
	Metric string  `json:"metric"`
	Query  string  `json:"query"`
	Value  float64 `json:"value"`
}

// Relation is the metric result relation of one run. The runid row is kept
// in RunID rather than in Rows because its value is not numeric.
type Relation struct {
	RunID string `json:"runid"`
	Rows  []Row  `json:"rows"`
}

func NewRelation(runID string) *Relation {
	return &Relation{RunID: runID}
}

func (r *Relation) Add(metric, query string, v float64) {
	r.Rows = append(r.Rows, Row{Metric: metric, Query: query, Value: v})
}

// AddResult appends the aggregate row of res and, when perQuery is set, one
// row per defined query before it. An undefined aggregate adds no row.
func (r *Relation) AddResult(res Result, perQuery bool) {
	if perQuery {
		for _, q := range res.Queries() {
			r.Add(res.Metric, q, res.PerQuery[q])
		}
	}
	if mean, ok := res.Aggregate(); ok {
		r.Add(res.Metric, AllQueries, mean)
	}
}

// Get returns the value of metric for query ("all" for the aggregate).
func (r *Relation) Get(metric, query string) (float64, bool) {
	for _, row := range r.Rows {
		if row.Metric == metric && row.Query == query {
			return row.Value, true
		}
	}
	return math.NaN(), false
}

// ForMetric returns the per-query values of metric, without the aggregate.
func (r *Relation) ForMetric(metric string) map[string]float64 {
	out := make(map[string]float64)
	for _, row := range r.Rows {
		if row.Metric == metric && row.Query != AllQueries {
			out[row.Query] = row.Value
		}
	}
	return out
}

// Metrics lists metric names in order of first appearance.
func (r *Relation) Metrics() []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range r.Rows {
		if !seen[row.Metric] {
			seen[row.Metric] = true
			names = append(names, row.Metric)
		}
	}
	return names
}

// EvaluateAll produces the standard summary relation: count rows followed by
// SummaryMeasures. With perQuery, each query's rows precede the "all" rows.
func (e *Evaluator) EvaluateAll(perQuery bool) (*Relation, error) {
	return e.EvaluateMeasures(SummaryMeasures, perQuery)
}

// EvaluateMeasures is EvaluateAll over a caller-chosen list of measures.
func (e *Evaluator) EvaluateMeasures(measures []string, perQuery bool) (*Relation, error) {
	results := make([]Result, 0, len(measures)+3)
	results = append(results, e.counts()...)
	for _, m := range measures {
		res, err := e.Measure(m)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", m, err)
		}
		results = append(results, res)
	}

	rel := NewRelation(e.run.System())
	if perQuery {
		for _, q := range e.qrels.Topics() {
			for _, res := range results {
				if v, ok := res.PerQuery[q]; ok {
					rel.Add(res.Metric, q, v)
				}
			}
		}
	}

	rel.Add("num_q", AllQueries, float64(len(e.run.Queries())))
	for _, res := range results {
		if res.Metric == "num_ret" || res.Metric == "num_rel" || res.Metric == "num_rel_ret" {
			total := 0.0
			for _, v := range res.PerQuery {
				total += v
			}
			rel.Add(res.Metric, AllQueries, total)
			continue
		}
		if mean, ok := res.Aggregate(); ok {
			rel.Add(res.Metric, AllQueries, mean)
		}
	}
	return rel, nil
}

// counts reports retrieved, relevant and relevant-retrieved documents per
// judged query, within DefaultDepth.
func (e *Evaluator) counts() []Result {
	topics := e.qrels.Topics()
	ret := newResult("num_ret", topics)
	rel := newResult("num_rel", topics)
	relRet := newResult("num_rel_ret", topics)

	for _, q := range topics {
		top := e.run.Top(q, DefaultDepth, e.opts.TieBreak)
		found := 0
		for _, en := range top {
			if e.qrels.Grade(q, en.DocID).Relevant() {
				found++
			}
		}
		ret.set(q, float64(len(top)))
		rel.set(q, float64(e.qrels.Relevant(q)))
		relRet.set(q, float64(found))
	}
	return []Result{ret.finish(), rel.finish(), relRet.finish()}
}
