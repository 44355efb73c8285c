package trec

import (
	"fmt"
	"slices"
	"strings"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
)

type Judgment struct {
	Query     string
	DocID     string
	Relevance int
}

// Grade is a relevance label that may be missing. A missing grade is never 0.
type Grade struct {
	Rel    int
	Judged bool
}

func (g Grade) Relevant() bool {
	return g.Judged && g.Rel > 0
}

// Qrels holds at most one grade per (query, docid). Negative grades are
// dropped on construction.
type Qrels struct {
	topics map[string]map[string]int
}

func NewQrels(judgments []Judgment) (*Qrels, error) {
	q := &Qrels{topics: make(map[string]map[string]int)}
	for _, j := range judgments {
		if j.Relevance < 0 {
			continue
		}
		docs, ok := q.topics[j.Query]
		if !ok {
			docs = make(map[string]int)
			q.topics[j.Query] = docs
		}
		if _, dup := docs[j.DocID]; dup {
			return nil, apperr.NewValidation(fmt.Sprintf("qrels: duplicate judgment for query %q docid %q", j.Query, j.DocID))
		}
		docs[j.DocID] = j.Relevance
	}
	return q, nil
}

func (q *Qrels) Grade(query, docID string) Grade {
	rel, ok := q.topics[query][docID]
	return Grade{Rel: rel, Judged: ok}
}

func (q *Qrels) Topics() []string {
	return sortedKeys(q.topics)
}

func (q *Qrels) HasTopic(query string) bool {
	_, ok := q.topics[query]
	return ok
}

// Len is the number of judged (query, docid) pairs.
func (q *Qrels) Len() int {
	n := 0
	for _, docs := range q.topics {
		n += len(docs)
	}
	return n
}

// Relevant is the number of documents judged relevant (grade > 0) for query.
func (q *Qrels) Relevant(query string) int {
	n := 0
	for _, rel := range q.topics[query] {
		if rel > 0 {
			n++
		}
	}
	return n
}

// NonRelevant is the number of documents judged with grade 0 for query.
func (q *Qrels) NonRelevant(query string) int {
	n := 0
	for _, rel := range q.topics[query] {
		if rel == 0 {
			n++
		}
	}
	return n
}

// RelevantGrades returns the positive grades of query, highest first.
func (q *Qrels) RelevantGrades(query string) []int {
	grades := make([]int, 0, len(q.topics[query]))
	for _, rel := range q.topics[query] {
		if rel > 0 {
			grades = append(grades, rel)
		}
	}
	slices.Sort(grades)
	slices.Reverse(grades)
	return grades
}

// CountLabel counts judgments carrying exactly label across all topics.
func (q *Qrels) CountLabel(label int) int {
	n := 0
	for _, docs := range q.topics {
		for _, rel := range docs {
			if rel == label {
				n++
			}
		}
	}
	return n
}

// Judgments returns every judgment ordered by query then docid.
func (q *Qrels) Judgments() []Judgment {
	out := make([]Judgment, 0, q.Len())
	for _, topic := range q.Topics() {
		docs := q.topics[topic]
		ids := make([]string, 0, len(docs))
		for id := range docs {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, strings.Compare)
		for _, id := range ids {
			out = append(out, Judgment{Query: topic, DocID: id, Relevance: docs[id]})
		}
	}
	return out
}

// FillUp returns a new Qrels with every judgment of q plus the judgments of
// other for pairs q does not judge.
func (q *Qrels) FillUp(other *Qrels) *Qrels {
	merged := &Qrels{topics: make(map[string]map[string]int, len(q.topics))}
	for topic, docs := range q.topics {
		cp := make(map[string]int, len(docs))
		for id, rel := range docs {
			cp[id] = rel
		}
		merged.topics[topic] = cp
	}
	for topic, docs := range other.topics {
		dst, ok := merged.topics[topic]
		if !ok {
			dst = make(map[string]int, len(docs))
			merged.topics[topic] = dst
		}
		for id, rel := range docs {
			if _, exists := dst[id]; !exists {
				dst[id] = rel
			}
		}
	}
	return merged
}
