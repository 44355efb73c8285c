package trec

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
)

// TieBreak selects the secondary sort key applied to documents with equal
// scores.
type TieBreak int

const (
	// TieBreakDocIDDesc orders ties by docid descending, as trec_eval does.
	TieBreakDocIDDesc TieBreak = iota
	// TieBreakDocIDAsc orders ties by docid ascending.
	TieBreakDocIDAsc
)

func (tb TieBreak) String() string {
	if tb == TieBreakDocIDAsc {
		return "docid_asc"
	}
	return "docid_desc"
}

// ParseTieBreak reads "docid_desc" or "docid_asc". Empty selects the default.
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "", "docid_desc":
		return TieBreakDocIDDesc, nil
	case "docid_asc":
		return TieBreakDocIDAsc, nil
	default:
		return TieBreakDocIDDesc, apperr.NewConfiguration("tie break", s, "docid_desc", "docid_asc")
	}
}

// Normalize sorts a copy of entries by score descending, breaks ties by docid
// in the requested direction and renumbers ranks from 1.
func Normalize(entries []Entry, tb TieBreak) []Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if tb == TieBreakDocIDAsc {
			return strings.Compare(a.DocID, b.DocID)
		}
		return strings.Compare(b.DocID, a.DocID)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Head truncates a normalized list to depth entries.
func Head(entries []Entry, depth int) []Entry {
	if depth < 0 {
		depth = 0
	}
	if depth < len(entries) {
		return entries[:depth:depth]
	}
	return entries
}

// CompareQueries orders numeric query ids numerically and everything else
// lexicographically, numeric ids first.
func CompareQueries(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return cmp.Compare(ai, bi)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func SortQueries(queries []string) {
	slices.SortFunc(queries, CompareQueries)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	SortQueries(keys)
	return keys
}
