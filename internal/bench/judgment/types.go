package judgment

import (
	"context"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
)

// Ungraded marks a pooled document that still awaits a judgment.
const Ungraded = -1

type Judge interface {
	Grade(ctx context.Context, entry pool.PoolEntry) ([]GradedDoc, error)
}

type GradedDoc struct {
	DocID string `yaml:"doc_id" json:"doc_id"`
	Grade int    `yaml:"grade" json:"grade"`
}

type JudgmentFile struct {
	Strategy string          `yaml:"strategy" json:"strategy"`
	Queries  []JudgmentEntry `yaml:"queries" json:"queries"`
}

type JudgmentEntry struct {
	QueryID string      `yaml:"query_id" json:"query_id"`
	Docs    []GradedDoc `yaml:"docs" json:"docs"`
}

// Qrels converts graded documents into a judgment set. Ungraded documents are
// left out.
func (jf *JudgmentFile) Qrels() (*trec.Qrels, error) {
	var judgments []trec.Judgment
	for _, entry := range jf.Queries {
		for _, d := range entry.Docs {
			if d.Grade < 0 {
				continue
			}
			judgments = append(judgments, trec.Judgment{Query: entry.QueryID, DocID: d.DocID, Relevance: d.Grade})
		}
	}
	return trec.NewQrels(judgments)
}

// Pending counts documents that are still ungraded.
func (jf *JudgmentFile) Pending() int {
	n := 0
	for _, entry := range jf.Queries {
		for _, d := range entry.Docs {
			if d.Grade < 0 {
				n++
			}
		}
	}
	return n
}
