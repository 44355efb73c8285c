package trec

import (
	"fmt"
	"slices"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
)

// Record is one row of a run relation. Rank is whatever the producer wrote;
// evaluation never trusts it.
type Record struct {
	Query string
	DocID string
	Rank  int
	Score float64
}

type Entry struct {
	DocID string
	Rank  int
	Score float64
}

// Run is one system's ranked list across all queries. It is immutable after
// NewRun returns; every accessor hands out copies.
type Run struct {
	system  string
	queries map[string][]Entry
	size    int
}

func NewRun(system string, records []Record) (*Run, error) {
	r := &Run{
		system:  system,
		queries: make(map[string][]Entry),
	}
	seen := make(map[string]map[string]struct{})

	for i, rec := range records {
		if rec.Query == "" || rec.DocID == "" {
			return nil, apperr.NewValidation(fmt.Sprintf("run %q: record %d has an empty query or docid", system, i))
		}
		docs, ok := seen[rec.Query]
		if !ok {
			docs = make(map[string]struct{})
			seen[rec.Query] = docs
		}
		if _, dup := docs[rec.DocID]; dup {
			return nil, apperr.NewValidation(fmt.Sprintf("run %q: duplicate docid %q for query %q", system, rec.DocID, rec.Query))
		}
		docs[rec.DocID] = struct{}{}

		r.queries[rec.Query] = append(r.queries[rec.Query], Entry{
			DocID: rec.DocID,
			Rank:  rec.Rank,
			Score: rec.Score,
		})
		r.size++
	}

	return r, nil
}

// NewRunFromEntries builds a run from per-query entry lists that are already
// ordered. Ranks are renumbered from 1 in the given order.
func NewRunFromEntries(system string, byQuery map[string][]Entry) (*Run, error) {
	records := make([]Record, 0)
	for _, q := range sortedKeys(byQuery) {
		for i, e := range byQuery[q] {
			records = append(records, Record{Query: q, DocID: e.DocID, Rank: i + 1, Score: e.Score})
		}
	}
	return NewRun(system, records)
}

func (r *Run) System() string { return r.system }

// Len is the number of (query, docid) rows.
func (r *Run) Len() int { return r.size }

func (r *Run) Queries() []string {
	return sortedKeys(r.queries)
}

func (r *Run) HasQuery(query string) bool {
	_, ok := r.queries[query]
	return ok
}

// Entries returns the query's entries in input order.
func (r *Run) Entries(query string) []Entry {
	return slices.Clone(r.queries[query])
}

// Ranked returns the query's entries in canonical order with ranks renumbered.
func (r *Run) Ranked(query string, tb TieBreak) []Entry {
	return Normalize(r.queries[query], tb)
}

// Top returns the first depth canonical entries for query.
func (r *Run) Top(query string, depth int, tb TieBreak) []Entry {
	return Head(r.Ranked(query, tb), depth)
}

// TopDocuments returns the docids of the first n entries in trec_eval order.
func (r *Run) TopDocuments(query string, n int) []string {
	top := r.Top(query, n, TieBreakDocIDDesc)
	ids := make([]string, len(top))
	for i, e := range top {
		ids[i] = e.DocID
	}
	return ids
}

// Records returns every row, queries in natural order, each query in
// canonical order.
func (r *Run) Records(tb TieBreak) []Record {
	out := make([]Record, 0, r.size)
	for _, q := range r.Queries() {
		for _, e := range r.Ranked(q, tb) {
			out = append(out, Record{Query: q, DocID: e.DocID, Rank: e.Rank, Score: e.Score})
		}
	}
	return out
}

// WithSystem returns a copy of r labelled system.
func (r *Run) WithSystem(system string) *Run {
	queries := make(map[string][]Entry, len(r.queries))
	for q, entries := range r.queries {
		queries[q] = slices.Clone(entries)
	}
	return &Run{system: system, queries: queries, size: r.size}
}
