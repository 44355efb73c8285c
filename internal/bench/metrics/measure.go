package metrics

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
)

// KnownMeasures lists the name patterns Measure accepts. N is a depth, X a
// persistence in (0, 1). Every name except P_N and unjudged_N may carry a
// _cut_N suffix; without it the depth is DefaultDepth. ubpref, urbp_X and
// alpha_urbp_X need an evaluator built WithUtility.
var KnownMeasures = []string{
	"P_N", "recip_rank", "map", "ndcg", "bpref", "unjudged_N", "rbp_X", "rbp_X_residual",
	"ubpref", "urbp_X", "alpha_urbp_X",
}

type measureKind int

const (
	kindMAP measureKind = iota
	kindRecipRank
	kindNDCG
	kindBpref
	kindPrecision
	kindUnjudged
	kindRBP
	kindRBPResidual
	kindUBpref
	kindURBP
	kindAlphaURBP
)

// parsedMeasure is a measure name split into its kind and parameters. n is
// the P_N or unjudged_N cutoff, p the persistence.
type parsedMeasure struct {
	kind  measureKind
	depth int
	n     int
	p     float64
}

func (m parsedMeasure) needsUtility() bool {
	return m.kind == kindUBpref || m.kind == kindURBP || m.kind == kindAlphaURBP
}

func (m parsedMeasure) canonical() string {
	switch m.kind {
	case kindMAP:
		return cutName("map", m.depth)
	case kindRecipRank:
		return cutName("recip_rank", m.depth)
	case kindNDCG:
		return cutName("ndcg", m.depth)
	case kindBpref:
		return cutName("bpref", m.depth)
	case kindPrecision:
		return fmt.Sprintf("P_%d", m.n)
	case kindUnjudged:
		return fmt.Sprintf("unjudged_%d", m.n)
	case kindRBP:
		return cutName(fmt.Sprintf("rbp_%.2f", m.p), m.depth)
	case kindRBPResidual:
		return cutName(fmt.Sprintf("rbp_%.2f_residual", m.p), m.depth)
	case kindUBpref:
		return cutName("ubpref", m.depth)
	case kindURBP:
		return cutName(fmt.Sprintf("urbp_%.2f", m.p), m.depth)
	default:
		return cutName(fmt.Sprintf("alpha_urbp_%.2f", m.p), m.depth)
	}
}

func parseMeasure(name string) (parsedMeasure, error) {
	unknown := apperr.NewConfiguration("measure", name, KnownMeasures...)

	base, depth, err := splitCut(name)
	if err != nil {
		return parsedMeasure{}, err
	}
	m := parsedMeasure{depth: depth}

	persistence := func(s string) (float64, error) {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, unknown
		}
		return p, checkPersistence(p)
	}

	switch {
	case base == "map":
		m.kind = kindMAP
	case base == "recip_rank":
		m.kind = kindRecipRank
	case base == "ndcg":
		m.kind = kindNDCG
	case base == "bpref":
		m.kind = kindBpref
	case base == "ubpref":
		m.kind = kindUBpref
	case strings.HasPrefix(base, "P_") && depth == DefaultDepth:
		m.kind = kindPrecision
		m.n, err = parseDepth(name, base[len("P_"):])
	case strings.HasPrefix(base, "unjudged_") && depth == DefaultDepth:
		m.kind = kindUnjudged
		m.n, err = parseDepth(name, base[len("unjudged_"):])
	case strings.HasPrefix(base, "rbp_"):
		rest := strings.TrimPrefix(base, "rbp_")
		m.kind = kindRBP
		if strings.HasSuffix(rest, "_residual") {
			m.kind = kindRBPResidual
			rest = strings.TrimSuffix(rest, "_residual")
		}
		m.p, err = persistence(rest)
	case strings.HasPrefix(base, "urbp_"):
		m.kind = kindURBP
		m.p, err = persistence(strings.TrimPrefix(base, "urbp_"))
	case strings.HasPrefix(base, "alpha_urbp_"):
		m.kind = kindAlphaURBP
		m.p, err = persistence(strings.TrimPrefix(base, "alpha_urbp_"))
	default:
		return parsedMeasure{}, unknown
	}
	if err != nil {
		return parsedMeasure{}, err
	}
	return m, nil
}

// Measure evaluates a metric by its trec_eval-style name, e.g. "P_10",
// "map_cut_100", "ndcg_cut_10" or "rbp_0.80".
func (e *Evaluator) Measure(name string) (Result, error) {
	m, err := parseMeasure(name)
	if err != nil {
		return Result{}, err
	}
	if m.needsUtility() && e.utility == nil {
		return Result{}, apperr.NewConfiguration("utility judgments for measure", name)
	}

	switch m.kind {
	case kindMAP:
		return e.MAP(m.depth)
	case kindRecipRank:
		return e.ReciprocalRank(m.depth)
	case kindNDCG:
		return e.NDCG(m.depth)
	case kindBpref:
		return e.Bpref(m.depth)
	case kindPrecision:
		return e.Precision(m.n)
	case kindUnjudged:
		return e.Unjudged(m.n)
	case kindRBP, kindRBPResidual:
		r, err := e.RBP(m.p, m.depth)
		if err != nil {
			return Result{}, err
		}
		if m.kind == kindRBPResidual {
			return r.Residual, nil
		}
		return r.Value, nil
	case kindUBpref:
		return e.UBpref(e.utility.Qrels, e.utility.factor(), m.depth)
	case kindURBP:
		return e.URBP(e.utility.Qrels, e.utility.params(m.p, m.depth))
	default:
		return e.AlphaURBP(e.utility.Qrels, e.utility.Goals, e.utility.params(m.p, m.depth))
	}
}

// ValidateMeasure reports whether Measure would accept name, without
// evaluating anything.
func ValidateMeasure(name string) error {
	_, err := CanonicalMeasure(name)
	return err
}

// CanonicalMeasure returns the name Measure reports its result under, e.g.
// "rbp_0.8" becomes "rbp_0.80" and "ndcg_cut_1000" becomes "ndcg".
func CanonicalMeasure(name string) (string, error) {
	m, err := parseMeasure(name)
	if err != nil {
		return "", err
	}
	return m.canonical(), nil
}

// CanonicalMeasures canonicalizes names and drops the ones that name a
// measure already listed.
func CanonicalMeasures(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		c, err := CanonicalMeasure(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// NeedsUtility reports whether name is a measure scored against a second
// judgment set. Unknown names report false.
func NeedsUtility(name string) bool {
	m, err := parseMeasure(name)
	return err == nil && m.needsUtility()
}

func splitCut(name string) (string, int, error) {
	idx := strings.LastIndex(name, "_cut_")
	if idx < 0 {
		return name, DefaultDepth, nil
	}
	depth, err := parseDepth(name, name[idx+len("_cut_"):])
	if err != nil {
		return "", 0, err
	}
	return name[:idx], depth, nil
}

func parseDepth(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, apperr.NewConfiguration("measure", name, KnownMeasures...)
	}
	return n, nil
}
