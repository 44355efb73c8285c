package compare

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	Kendall  = "kendall"
	Pearson  = "pearson"
	Spearman = "spearman"
	TauAP    = "tau_ap"
)

var Methods = []string{Kendall, Pearson, Spearman, TauAP}

var aliases = map[string]string{
	"kendalltau":   Kendall,
	"spearmanr":    Spearman,
	"pearsonr":     Pearson,
	"tauap":        TauAP,
	"kendalltauap": TauAP,
}

// Correlation compares two system rankings of the same runs. b is mapped onto
// positions in a; for tau_ap, a is the reference ordering.
func Correlation(a, b []SystemScore, method string) (float64, error) {
	if m, ok := aliases[method]; ok {
		method = m
	}
	if !slices.Contains(Methods, method) {
		return math.NaN(), apperr.NewConfiguration("correlation", method, Methods...)
	}
	if len(a) != len(b) {
		return math.NaN(), apperr.NewShapeMismatch(len(a), len(b), "rankings must rank the same systems")
	}
	if len(a) < 2 {
		return math.NaN(), apperr.NewShapeMismatch(len(a), len(b), "at least two systems are needed")
	}

	position := make(map[string]int, len(a))
	for i, s := range a {
		if _, dup := position[s.RunID]; dup {
			return math.NaN(), apperr.NewShapeMismatch(len(a), len(b), fmt.Sprintf("system %q appears twice in the first ranking", s.RunID))
		}
		position[s.RunID] = i
	}
	seen := make(map[string]struct{}, len(b))
	reference := make([]float64, len(a))
	mapped := make([]float64, len(b))
	for i, s := range b {
		if _, dup := seen[s.RunID]; dup {
			return math.NaN(), apperr.NewShapeMismatch(len(a), len(b), fmt.Sprintf("system %q appears twice in the second ranking", s.RunID))
		}
		seen[s.RunID] = struct{}{}
		pos, ok := position[s.RunID]
		if !ok {
			return math.NaN(), apperr.NewShapeMismatch(len(a), len(b), fmt.Sprintf("system %q is missing from the first ranking", s.RunID))
		}
		reference[i] = float64(i)
		mapped[i] = float64(pos)
	}

	switch method {
	case Kendall:
		return stat.Kendall(reference, mapped, nil), nil
	case Pearson:
		return stat.Correlation(reference, mapped, nil), nil
	case Spearman:
		return stat.Correlation(ranks(reference), ranks(mapped), nil), nil
	default:
		return tauAP(mapped), nil
	}
}

// tauAP is the AP rank correlation of ranking against the identity ordering.
// It weighs swaps near the top more than swaps near the bottom.
func tauAP(ranking []float64) float64 {
	n := len(ranking)
	sum := 0.0
	for i := 1; i < n; i++ {
		correct := 0
		for _, above := range ranking[:i] {
			if ranking[i] > above {
				correct++
			}
		}
		sum += float64(correct) / float64(i)
	}
	p := sum / float64(n-1)
	return 2*p - 1
}

// ranks assigns 1-based ranks, averaging ties.
func ranks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(x[a], x[b]) })

	out := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// ConfidenceInterval returns the half-width of the Student-t interval around
// the mean of values.
func ConfidenceInterval(values []float64, confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return math.NaN(), apperr.NewValidation("confidence must be in (0, 1)")
	}
	if len(values) < 2 {
		return math.NaN(), apperr.NewEmptyInput("", "a confidence interval needs at least two values")
	}
	n := float64(len(values))
	se := stat.StdDev(values, nil) / math.Sqrt(n)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}
	return se * t.Quantile((1+confidence)/2), nil
}
