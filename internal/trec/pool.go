package trec

import (
	"slices"
	"strings"
)

// Pool maps each query to the set of documents selected for judging.
type Pool struct {
	topics map[string]map[string]struct{}
}

func NewPool(docs map[string][]string) *Pool {
	p := &Pool{topics: make(map[string]map[string]struct{}, len(docs))}
	for query, ids := range docs {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		p.topics[query] = set
	}
	return p
}

func (p *Pool) Queries() []string {
	return sortedKeys(p.topics)
}

// Docs returns the pooled docids of query in ascending order.
func (p *Pool) Docs(query string) []string {
	ids := make([]string, 0, len(p.topics[query]))
	for id := range p.topics[query] {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, strings.Compare)
	return ids
}

func (p *Pool) Contains(query, docID string) bool {
	_, ok := p.topics[query][docID]
	return ok
}

func (p *Pool) Size(query string) int {
	return len(p.topics[query])
}

// Len is the total number of pooled (query, docid) pairs.
func (p *Pool) Len() int {
	n := 0
	for _, set := range p.topics {
		n += len(set)
	}
	return n
}
