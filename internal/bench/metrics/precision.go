package metrics

import "fmt"

// Precision is the fraction of the top depth documents judged relevant.
// The denominator is always depth, so unretrieved slots count as misses.
func (e *Evaluator) Precision(depth int) (Result, error) {
	if err := checkDepth(depth); err != nil {
		return Result{}, err
	}

	topics := e.qrels.Topics()
	b := newResult(fmt.Sprintf("P_%d", depth), topics)
	for _, q := range topics {
		top := e.ranked(q, depth, e.opts.RemoveUnjudged)
		b.set(q, float64(countRelevant(top))/float64(depth))
	}
	return b.finish(), nil
}

// Unjudged is the fraction of the top depth documents without any judgment.
func (e *Evaluator) Unjudged(depth int) (Result, error) {
	if err := checkDepth(depth); err != nil {
		return Result{}, err
	}

	topics := e.qrels.Topics()
	b := newResult(fmt.Sprintf("unjudged_%d", depth), topics)
	for _, q := range topics {
		missing := 0
		for _, je := range e.ranked(q, depth, false) {
			if !je.grade.Judged {
				missing++
			}
		}
		b.set(q, float64(missing)/float64(depth))
	}
	return b.finish(), nil
}

func countRelevant(entries []judgedEntry) int {
	n := 0
	for _, je := range entries {
		if je.grade.Relevant() {
			n++
		}
	}
	return n
}
