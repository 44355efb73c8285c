package trec

type limitKind int

const (
	limitNone limitKind = iota
	limitUniform
	limitPerQuery
)

// MaxDocs caps the number of documents emitted per query. The zero value
// means no cap.
type MaxDocs struct {
	kind     limitKind
	uniform  int
	perQuery map[string]int
}

// Uniform applies the same cap n to every query.
func Uniform(n int) MaxDocs {
	return MaxDocs{kind: limitUniform, uniform: n}
}

// PerQuery caps each query by its own entry. Queries missing from limits are
// not capped.
func PerQuery(limits map[string]int) MaxDocs {
	cp := make(map[string]int, len(limits))
	for q, n := range limits {
		cp[q] = n
	}
	return MaxDocs{kind: limitPerQuery, perQuery: cp}
}

func (m MaxDocs) IsZero() bool {
	return m.kind == limitNone
}

// For reports the cap for query; ok is false when the query is uncapped.
func (m MaxDocs) For(query string) (n int, ok bool) {
	switch m.kind {
	case limitUniform:
		return m.uniform, true
	case limitPerQuery:
		n, ok = m.perQuery[query]
		return n, ok
	default:
		return 0, false
	}
}

// Apply truncates entries to the cap for query.
func (m MaxDocs) Apply(query string, entries []Entry) []Entry {
	if n, ok := m.For(query); ok {
		return Head(entries, n)
	}
	return entries
}

// Score is a run's score for a document that may be absent from that run.
type Score struct {
	Value   float64
	Present bool
}

func ScoreOf(v float64) Score {
	return Score{Value: v, Present: true}
}

var NullScore = Score{}
