package metrics

import (
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
)

// Bpref scores each relevant document by how many judged non-relevant
// documents precede it. Unjudged documents are skipped before the cutoff is
// applied, regardless of RemoveUnjudged.
func (e *Evaluator) Bpref(depth int) (Result, error) {
	if err := checkDepth(depth); err != nil {
		return Result{}, err
	}

	topics := e.qrels.Topics()
	b := newResult(cutName("bpref", depth), topics)
	for _, q := range topics {
		rel := e.qrels.Relevant(q)
		if rel == 0 {
			b.exclude(q, noRelevant(q))
			continue
		}
		judged := e.ranked(q, depth, true)
		b.set(q, bprefSum(judged, rel, e.qrels.NonRelevant(q), nil))
	}
	return b.finish(), nil
}

// UBpref is bpref with each relevant document's term multiplied by its grade
// in other times factor. Documents other does not judge are dropped before
// any counting.
func (e *Evaluator) UBpref(other *trec.Qrels, factor float64, depth int) (Result, error) {
	if err := checkDepth(depth); err != nil {
		return Result{}, err
	}

	topics := e.qrels.Topics()
	b := newResult(cutName("ubpref", depth), topics)
	for _, q := range topics {
		rel := e.qrels.Relevant(q)
		if rel == 0 {
			b.exclude(q, noRelevant(q))
			continue
		}

		var kept []judgedEntry
		var weights []float64
		for _, en := range e.run.Ranked(q, e.opts.TieBreak) {
			if len(kept) == depth {
				break
			}
			og := other.Grade(q, en.DocID)
			g := e.qrels.Grade(q, en.DocID)
			if !og.Judged || !g.Judged {
				continue
			}
			en.Rank = len(kept) + 1
			kept = append(kept, judgedEntry{Entry: en, grade: g})
			weights = append(weights, float64(og.Rel)*factor)
		}
		b.set(q, bprefSum(kept, rel, e.qrels.NonRelevant(q), weights))
	}
	return b.finish(), nil
}

// bprefSum walks judged entries in rank order. weights, when set, scales each
// entry's term.
func bprefSum(judged []judgedEntry, rel, nonRel int, weights []float64) float64 {
	denom := min(rel, nonRel)
	nonRelSoFar := 0
	sum := 0.0
	for i, je := range judged {
		if je.grade.Rel == 0 {
			nonRelSoFar++
			continue
		}
		term := 1.0
		if denom > 0 {
			term = 1.0 - float64(min(nonRelSoFar, rel))/float64(denom)
		}
		if weights != nil {
			term *= weights[i]
		}
		sum += term
	}
	return sum / float64(rel)
}
