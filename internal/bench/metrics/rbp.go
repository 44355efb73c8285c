package metrics

import (
	"fmt"
	"math"
	"strconv"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultPersistence = 0.8

	StrategyDirectMultiplication = "direct_multiplication"
)

// RBPResult carries rank-biased precision and its residual, the weight that
// unjudged documents and the tail beyond depth could still add.
type RBPResult struct {
	Value    Result
	Residual Result
}

// UtilityParams configures the utility-weighted RBP variants.
type UtilityParams struct {
	P        float64
	Depth    int
	Strategy string
	// Factor rescales the second-dimension grade, e.g. 100 for a 0-1 scale.
	Factor float64
}

func DefaultUtilityParams() UtilityParams {
	return UtilityParams{
		P:        DefaultPersistence,
		Depth:    DefaultDepth,
		Strategy: StrategyDirectMultiplication,
		Factor:   1.0,
	}
}

// Goal is a per-query target profile for alpha-uRBP. Spread is used as the
// scale of the Gaussian kernel.
type Goal struct {
	Mean   float64 `yaml:"mean" json:"mean"`
	Spread float64 `yaml:"var" json:"var"`
}

func (e *Evaluator) RBP(p float64, depth int) (RBPResult, error) {
	if err := checkDepth(depth); err != nil {
		return RBPResult{}, err
	}
	if err := checkPersistence(p); err != nil {
		return RBPResult{}, err
	}

	topics := e.qrels.Topics()
	value := newResult(cutName(fmt.Sprintf("rbp_%.2f", p), depth), topics)
	residual := newResult(cutName(fmt.Sprintf("rbp_%.2f_residual", p), depth), topics)
	tail := math.Pow(p, float64(depth))

	for _, q := range topics {
		top := e.ranked(q, depth, e.opts.RemoveUnjudged)
		w := rbpWeights(top, p, e.opts.AverageTies)

		score, open := 0.0, 0.0
		for i, je := range top {
			// Unjudged documents count as relevant for the residual only.
			if !je.grade.Judged || je.grade.Rel > 0 {
				open += w[i]
			}
			if !je.grade.Relevant() {
				continue
			}
			if e.opts.Binary {
				score += w[i]
			} else {
				score += w[i] * float64(je.grade.Rel)
			}
		}
		value.set(q, score)
		residual.set(q, open-score+tail)
	}

	return RBPResult{Value: value.finish(), Residual: residual.finish()}, nil
}

// URBP multiplies each relevant document's RBP weight by its grade in other.
// Documents other does not judge contribute nothing.
func (e *Evaluator) URBP(other *trec.Qrels, params UtilityParams) (Result, error) {
	if err := e.checkUtility(params); err != nil {
		return Result{}, err
	}

	topics := e.qrels.Topics()
	b := newResult(cutName(fmt.Sprintf("urbp_%.2f", params.P), params.Depth), topics)
	for _, q := range topics {
		b.set(q, e.utilitySum(q, other, params, func(v float64) float64 { return v }))
	}
	return b.finish(), nil
}

// AlphaURBP is URBP with the second grade replaced by its closeness to the
// query's goal: a Gaussian kernel peak-normalized to 100. Queries without a
// goal are undefined.
func (e *Evaluator) AlphaURBP(other *trec.Qrels, goals map[string]Goal, params UtilityParams) (Result, error) {
	if err := e.checkUtility(params); err != nil {
		return Result{}, err
	}
	for q, g := range goals {
		if g.Spread <= 0 {
			return Result{}, apperr.NewConfiguration("goal spread for query "+q, strconv.FormatFloat(g.Spread, 'f', -1, 64))
		}
	}

	topics := e.qrels.Topics()
	b := newResult(cutName(fmt.Sprintf("alpha_urbp_%.2f", params.P), params.Depth), topics)
	for _, q := range topics {
		goal, ok := goals[q]
		if !ok {
			b.exclude(q, apperr.NewEmptyInput(q, "no goal profile"))
			continue
		}
		kernel := distuv.Normal{Mu: goal.Mean, Sigma: goal.Spread}
		peak := kernel.Prob(goal.Mean)
		b.set(q, e.utilitySum(q, other, params, func(v float64) float64 {
			return kernel.Prob(v) * 100 / peak
		}))
	}
	return b.finish(), nil
}

func (e *Evaluator) checkUtility(params UtilityParams) error {
	if err := checkDepth(params.Depth); err != nil {
		return err
	}
	if err := checkPersistence(params.P); err != nil {
		return err
	}
	if params.Strategy != StrategyDirectMultiplication {
		return apperr.NewConfiguration("urbp strategy", params.Strategy, StrategyDirectMultiplication)
	}
	return nil
}

func (e *Evaluator) utilitySum(query string, other *trec.Qrels, params UtilityParams, shape func(float64) float64) float64 {
	top := e.ranked(query, params.Depth, e.opts.RemoveUnjudged)
	w := rbpWeights(top, params.P, e.opts.AverageTies)

	sum := 0.0
	for i, je := range top {
		if !je.grade.Relevant() {
			continue
		}
		og := other.Grade(query, je.DocID)
		if !og.Judged {
			continue
		}
		v := w[i] * shape(float64(og.Rel)) * params.Factor
		if !e.opts.Binary {
			v *= float64(je.grade.Rel)
		}
		sum += v
	}
	return sum
}

// rbpWeights returns (1-p)p^(rank-1) per entry. With averageTies, runs of
// consecutive equal scores share their mean weight, which keeps the block
// total unchanged.
func rbpWeights(entries []judgedEntry, p float64, averageTies bool) []float64 {
	w := make([]float64, len(entries))
	for i, je := range entries {
		w[i] = (1 - p) * math.Pow(p, float64(je.Rank-1))
	}
	if !averageTies {
		return w
	}

	for start := 0; start < len(entries); {
		end := start + 1
		for end < len(entries) && entries[end].Score == entries[start].Score {
			end++
		}
		if end-start > 1 {
			avg := floats.Sum(w[start:end]) / float64(end-start)
			for i := start; i < end; i++ {
				w[i] = avg
			}
		}
		start = end
	}
	return w
}
