package metrics

import (
	"math"
)

// NDCG normalizes the run's DCG@depth by the DCG of the best possible
// ordering of the query's relevant judgments. Queries whose ideal DCG is 0
// are undefined.
func (e *Evaluator) NDCG(depth int) (Result, error) {
	if err := checkDepth(depth); err != nil {
		return Result{}, err
	}

	topics := e.qrels.Topics()
	b := newResult(cutName("ndcg", depth), topics)
	for _, q := range topics {
		idcg := e.idealDCG(q, depth)
		if idcg == 0 {
			b.exclude(q, noRelevant(q))
			continue
		}
		b.set(q, e.dcg(e.ranked(q, depth, e.opts.RemoveUnjudged))/idcg)
	}
	return b.finish(), nil
}

func (e *Evaluator) dcg(entries []judgedEntry) float64 {
	score := 0.0
	for _, je := range entries {
		if !je.grade.Relevant() {
			continue
		}
		score += e.gain(je.grade.Rel) * discount(je.Rank)
	}
	return score
}

func (e *Evaluator) idealDCG(query string, depth int) float64 {
	grades := e.qrels.RelevantGrades(query)
	if len(grades) > depth {
		grades = grades[:depth]
	}
	score := 0.0
	for i, g := range grades {
		score += e.gain(g) * discount(i+1)
	}
	return score
}

func (e *Evaluator) gain(grade int) float64 {
	if e.opts.Graded {
		return math.Exp2(float64(grade)) - 1
	}
	return float64(grade)
}

func discount(rank int) float64 {
	return 1.0 / math.Log2(float64(rank)+1)
}
