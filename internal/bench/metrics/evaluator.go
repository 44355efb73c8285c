package metrics

import (
	"fmt"
	"strconv"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
)

const DefaultDepth = 1000

type Options struct {
	// TieBreak orders documents with equal scores before any cutoff.
	TieBreak trec.TieBreak
	// RemoveUnjudged drops documents without a judgment before the cutoff.
	// Bpref ignores it: unjudged documents never count there.
	RemoveUnjudged bool
	// Graded switches NDCG gain from the raw grade to 2^grade-1.
	Graded bool
	// Binary makes RBP count every relevant document as 1 instead of its grade.
	Binary bool
	// AverageTies spreads RBP weight evenly over documents sharing a score.
	AverageTies bool
}

func DefaultOptions() Options {
	return Options{
		TieBreak:    trec.TieBreakDocIDDesc,
		Binary:      true,
		AverageTies: true,
	}
}

// Evaluator computes metrics of one run against one judgment set. Neither
// input is modified.
type Evaluator struct {
	run     *trec.Run
	qrels   *trec.Qrels
	opts    Options
	utility *Utility
}

func NewEvaluator(run *trec.Run, qrels *trec.Qrels, opts Options) *Evaluator {
	return &Evaluator{run: run, qrels: qrels, opts: opts}
}

// Utility is a second judgment dimension, such as understandability, scored
// by the ubpref, urbp_X and alpha_urbp_X measures.
type Utility struct {
	Qrels *trec.Qrels
	// Goals are the alpha_urbp target profiles per query.
	Goals map[string]Goal
	// Factor rescales the second grade; 0 keeps it as is.
	Factor float64
	// Strategy combines the two grades; empty selects direct multiplication.
	Strategy string
}

func (u *Utility) params(p float64, depth int) UtilityParams {
	params := DefaultUtilityParams()
	params.P = p
	params.Depth = depth
	params.Factor = u.factor()
	if u.Strategy != "" {
		params.Strategy = u.Strategy
	}
	return params
}

func (u *Utility) factor() float64 {
	if u.Factor == 0 {
		return 1
	}
	return u.Factor
}

// WithUtility returns an evaluator whose Measure also serves the utility
// measures.
func (e *Evaluator) WithUtility(u *Utility) *Evaluator {
	return &Evaluator{run: e.run, qrels: e.qrels, opts: e.opts, utility: u}
}

func (e *Evaluator) Run() *trec.Run     { return e.run }
func (e *Evaluator) Qrels() *trec.Qrels { return e.qrels }

type judgedEntry struct {
	trec.Entry
	grade trec.Grade
}

// ranked joins the canonical list of query with its judgments, optionally
// drops unjudged documents, and stops at depth. Ranks are positions in the
// returned list.
func (e *Evaluator) ranked(query string, depth int, removeUnjudged bool) []judgedEntry {
	all := e.run.Ranked(query, e.opts.TieBreak)
	out := make([]judgedEntry, 0, min(depth, len(all)))
	for _, en := range all {
		if len(out) == depth {
			break
		}
		g := e.qrels.Grade(query, en.DocID)
		if removeUnjudged && !g.Judged {
			continue
		}
		en.Rank = len(out) + 1
		out = append(out, judgedEntry{Entry: en, grade: g})
	}
	return out
}

func checkDepth(depth int) error {
	if depth <= 0 {
		return apperr.NewConfiguration("depth", strconv.Itoa(depth))
	}
	return nil
}

func checkPersistence(p float64) error {
	if p <= 0 || p >= 1 {
		return apperr.NewConfiguration("rbp persistence", strconv.FormatFloat(p, 'f', -1, 64))
	}
	return nil
}

// cutName appends the cutoff to metrics that trec_eval reports at the default
// depth without one.
func cutName(base string, depth int) string {
	if depth == DefaultDepth {
		return base
	}
	return fmt.Sprintf("%s_cut_%d", base, depth)
}

func noRelevant(query string) error {
	return apperr.NewEmptyInput(query, "no relevant judgments")
}
