package metrics

// ReciprocalRank is 1/rank of the first relevant document within depth, 0
// when none is found.
func (e *Evaluator) ReciprocalRank(depth int) (Result, error) {
	if err := checkDepth(depth); err != nil {
		return Result{}, err
	}

	topics := e.qrels.Topics()
	b := newResult(cutName("recip_rank", depth), topics)
	for _, q := range topics {
		rr := 0.0
		for _, je := range e.ranked(q, depth, e.opts.RemoveUnjudged) {
			if je.grade.Relevant() {
				rr = 1.0 / float64(je.Rank)
				break
			}
		}
		b.set(q, rr)
	}
	return b.finish(), nil
}

// MAP averages, per query, the precision at each relevant document found
// within depth, divided by every relevant document the query has in the
// judgments. Queries without relevant judgments are undefined.
func (e *Evaluator) MAP(depth int) (Result, error) {
	if err := checkDepth(depth); err != nil {
		return Result{}, err
	}

	topics := e.qrels.Topics()
	b := newResult(cutName("map", depth), topics)
	for _, q := range topics {
		total := e.qrels.Relevant(q)
		if total == 0 {
			b.exclude(q, noRelevant(q))
			continue
		}

		found := 0
		sum := 0.0
		for _, je := range e.ranked(q, depth, e.opts.RemoveUnjudged) {
			if je.grade.Relevant() {
				found++
				sum += float64(found) / float64(je.Rank)
			}
		}
		b.set(q, sum/float64(total))
	}
	return b.finish(), nil
}
