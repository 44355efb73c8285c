package pool

import (
	"cmp"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
)

const (
	StrategyTopX = "topX"
	StrategyRBP  = "rbp"
	StrategyRRF  = "rrf"

	CombineSum = "sum"
	CombineMax = "max"

	DefaultTopX = 10
	DefaultP    = 0.8
	DefaultK    = 60
)

// tieBreak is the content-independent order used to rank each run before
// pooling.
const tieBreak = trec.TieBreakDocIDAsc

// Strategy configures pooling. A nil K selects DefaultK; an explicit 0 is
// kept.
type Strategy struct {
	Name    string  `yaml:"name" json:"name"`
	TopX    int     `yaml:"top_x" json:"top_x"`
	P       float64 `yaml:"p,omitempty" json:"p,omitempty"`
	Combine string  `yaml:"combine,omitempty" json:"combine,omitempty"`
	K       *int    `yaml:"k,omitempty" json:"k,omitempty"`
}

// WithDefaults fills unset parameters.
func (s Strategy) WithDefaults() Strategy {
	if s.TopX <= 0 {
		s.TopX = DefaultTopX
	}
	if s.P == 0 {
		s.P = DefaultP
	}
	if s.Combine == "" {
		s.Combine = CombineSum
	}
	if s.K == nil {
		k := DefaultK
		s.K = &k
	}
	return s
}

func (s Strategy) Validate() error {
	switch s.Name {
	case StrategyTopX:
	case StrategyRBP:
		if s.Combine != CombineSum && s.Combine != CombineMax {
			return apperr.NewConfiguration("rbp combine mode", s.Combine, CombineSum, CombineMax)
		}
		if s.P <= 0 || s.P >= 1 {
			return apperr.NewValidation("rbp persistence must be in (0, 1)")
		}
	case StrategyRRF:
		if s.K != nil && *s.K < 0 {
			return apperr.NewValidation("rrf k must not be negative")
		}
	default:
		return apperr.NewConfiguration("pool strategy", s.Name, StrategyTopX, StrategyRBP, StrategyRRF)
	}
	return nil
}

// Build merges runs into a judgment pool. Unset strategy parameters take
// their defaults; an unknown strategy is refused.
func Build(runs []*trec.Run, s Strategy) (*trec.Pool, error) {
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	queries := UnionQueries(runs)
	docs := make(map[string][]string, len(queries))

	for _, q := range queries {
		switch s.Name {
		case StrategyTopX:
			docs[q] = topX(runs, q, s.TopX)
		case StrategyRBP:
			docs[q] = topWeighted(rbpWeights(runs, q, s.P, s.Combine), s.TopX)
		case StrategyRRF:
			docs[q] = topWeighted(rrfWeights(runs, q, *s.K), s.TopX)
		}
	}

	p := trec.NewPool(docs)
	slog.Info("Pool built", "strategy", s.Name, "runs", len(runs), "queries", len(queries), "documents", p.Len())
	return p, nil
}

func topX(runs []*trec.Run, query string, cutoff int) []string {
	var ids []string
	for _, run := range runs {
		for _, e := range run.Top(query, cutoff, tieBreak) {
			ids = append(ids, e.DocID)
		}
	}
	return ids
}

// RBPWeight is (1-p)p^(rank-1).
func RBPWeight(p float64, rank int) float64 {
	return (1 - p) * math.Pow(p, float64(rank-1))
}

// RRFWeight is 1/(k+rank).
func RRFWeight(k, rank int) float64 {
	return 1.0 / float64(k+rank)
}

func rbpWeights(runs []*trec.Run, query string, p float64, combine string) map[string]float64 {
	weights := make(map[string]float64)
	for _, run := range runs {
		for _, e := range run.Ranked(query, tieBreak) {
			w := RBPWeight(p, e.Rank)
			prev, seen := weights[e.DocID]
			switch {
			case !seen:
				weights[e.DocID] = w
			case combine == CombineMax:
				weights[e.DocID] = max(prev, w)
			default:
				weights[e.DocID] = prev + w
			}
		}
	}
	return weights
}

func rrfWeights(runs []*trec.Run, query string, k int) map[string]float64 {
	weights := make(map[string]float64)
	for _, run := range runs {
		for _, e := range run.Ranked(query, tieBreak) {
			weights[e.DocID] += RRFWeight(k, e.Rank)
		}
	}
	return weights
}

type weightedDoc struct {
	id     string
	weight float64
}

// RankWeights orders documents by weight descending, docid ascending.
func RankWeights(weights map[string]float64) []trec.Entry {
	ranked := make([]weightedDoc, 0, len(weights))
	for id, w := range weights {
		ranked = append(ranked, weightedDoc{id: id, weight: w})
	}
	slices.SortFunc(ranked, func(a, b weightedDoc) int {
		if c := cmp.Compare(b.weight, a.weight); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})

	out := make([]trec.Entry, len(ranked))
	for i, d := range ranked {
		out[i] = trec.Entry{DocID: d.id, Rank: i + 1, Score: d.weight}
	}
	return out
}

func topWeighted(weights map[string]float64, n int) []string {
	top := trec.Head(RankWeights(weights), n)
	ids := make([]string, len(top))
	for i, e := range top {
		ids[i] = e.DocID
	}
	return ids
}

// UnionQueries lists every query of every run in natural order.
func UnionQueries(runs []*trec.Run) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, run := range runs {
		for _, q := range run.Queries() {
			if _, ok := seen[q]; !ok {
				seen[q] = struct{}{}
				out = append(out, q)
			}
		}
	}
	trec.SortQueries(out)
	return out
}
