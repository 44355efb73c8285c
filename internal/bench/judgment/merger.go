package judgment

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
)

// Merge turns annotations into qrels and fills the gaps from base. Annotated
// grades win over base grades for the same pair.
func Merge(jf *JudgmentFile, base *trec.Qrels) (*trec.Qrels, error) {
	annotated, err := jf.Qrels()
	if err != nil {
		return nil, fmt.Errorf("merge judgments: %w", err)
	}
	if base == nil {
		return annotated, nil
	}
	return annotated.FillUp(base), nil
}

// QrelsJudge grades pooled documents from an existing judgment set, leaving
// pairs it has no grade for ungraded.
type QrelsJudge struct {
	Qrels *trec.Qrels
}

func (j QrelsJudge) Grade(ctx context.Context, entry pool.PoolEntry) ([]GradedDoc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := make([]GradedDoc, 0, len(entry.Docs))
	for _, d := range entry.Docs {
		g := j.Qrels.Grade(entry.QueryID, d.DocID)
		grade := Ungraded
		if g.Judged {
			grade = g.Rel
		}
		docs = append(docs, GradedDoc{DocID: d.DocID, Grade: grade})
	}
	return docs, nil
}

// Collect asks judge to grade every query of a pool file.
func Collect(ctx context.Context, judge Judge, pf *pool.PoolFile, strategy string) (*JudgmentFile, error) {
	jf := &JudgmentFile{Strategy: strategy, Queries: make([]JudgmentEntry, 0, len(pf.Queries))}
	for _, pe := range pf.Queries {
		docs, err := judge.Grade(ctx, pe)
		if err != nil {
			return nil, fmt.Errorf("grade query %s: %w", pe.QueryID, err)
		}
		jf.Queries = append(jf.Queries, JudgmentEntry{QueryID: pe.QueryID, Docs: docs})
	}
	return jf, nil
}
