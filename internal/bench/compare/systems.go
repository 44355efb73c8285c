package compare

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
)

type SystemScore struct {
	RunID string  `json:"runid"`
	Value float64 `json:"value"`
}

// SortSystems orders runs by their aggregate value of metric, descending,
// with ties broken by run id ascending. Runs lacking the metric sort last.
func SortSystems(relations []*metrics.Relation, metric string) []SystemScore {
	out := make([]SystemScore, 0, len(relations))
	for _, rel := range relations {
		v, _ := rel.Get(metric, metrics.AllQueries)
		out = append(out, SystemScore{RunID: rel.RunID, Value: v})
	}
	slices.SortStableFunc(out, func(a, b SystemScore) int {
		an, bn := math.IsNaN(a.Value), math.IsNaN(b.Value)
		switch {
		case an && !bn:
			return 1
		case !an && bn:
			return -1
		case !an && !bn:
			if c := cmp.Compare(b.Value, a.Value); c != 0 {
				return c
			}
		}
		return strings.Compare(a.RunID, b.RunID)
	})
	return out
}

// RunIDs lists the run ids of a sorted ranking.
func RunIDs(scores []SystemScore) []string {
	ids := make([]string, len(scores))
	for i, s := range scores {
		ids[i] = s.RunID
	}
	return ids
}
