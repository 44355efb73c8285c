package fusion

import (
	"fmt"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
)

const (
	DefaultK       = 60
	DefaultDepth   = 1000
	DefaultMaxDocs = 1000
)

type RRFOptions struct {
	K int
	// Depth is how many documents of each run take part.
	Depth   int
	MaxDocs trec.MaxDocs
}

func DefaultRRFOptions() RRFOptions {
	return RRFOptions{K: DefaultK, Depth: DefaultDepth, MaxDocs: trec.Uniform(DefaultMaxDocs)}
}

// ReciprocalRank sums 1/(k+rank) over runs for every document.
func ReciprocalRank(runs []*trec.Run, opts RRFOptions) (*trec.Run, error) {
	if len(runs) == 0 {
		return nil, apperr.NewEmptyInput("", "no runs to fuse")
	}
	if opts.K < 0 {
		return nil, apperr.NewValidation("rrf k must not be negative")
	}
	if opts.Depth <= 0 {
		opts.Depth = DefaultDepth
	}

	byQuery := make(map[string][]trec.Entry)
	for _, q := range pool.UnionQueries(runs) {
		scores := make(map[string]float64)
		for _, run := range runs {
			for _, e := range run.Top(q, opts.Depth, tieBreak) {
				scores[e.DocID] += pool.RRFWeight(opts.K, e.Rank)
			}
		}
		byQuery[q] = opts.MaxDocs.Apply(q, pool.RankWeights(scores))
	}

	return emit(fmt.Sprintf("reciprocal_rank_fusion_k=%d", opts.K), byQuery)
}

type RBPOptions struct {
	P       float64
	Combine string
	Depth   int
	MaxDocs trec.MaxDocs
}

func DefaultRBPOptions() RBPOptions {
	return RBPOptions{P: pool.DefaultP, Combine: pool.CombineSum, Depth: DefaultDepth, MaxDocs: trec.Uniform(DefaultMaxDocs)}
}

// RankBiased scores each document by its (1-p)p^(rank-1) weights across
// runs, summed or maxed.
func RankBiased(runs []*trec.Run, opts RBPOptions) (*trec.Run, error) {
	if len(runs) == 0 {
		return nil, apperr.NewEmptyInput("", "no runs to fuse")
	}
	if opts.Combine != pool.CombineSum && opts.Combine != pool.CombineMax {
		return nil, apperr.NewConfiguration("rbp combine mode", opts.Combine, pool.CombineSum, pool.CombineMax)
	}
	if opts.P <= 0 || opts.P >= 1 {
		return nil, apperr.NewValidation("rbp persistence must be in (0, 1)")
	}
	if opts.Depth <= 0 {
		opts.Depth = DefaultDepth
	}

	byQuery := make(map[string][]trec.Entry)
	for _, q := range pool.UnionQueries(runs) {
		scores := make(map[string]float64)
		for _, run := range runs {
			for _, e := range run.Top(q, opts.Depth, tieBreak) {
				w := pool.RBPWeight(opts.P, e.Rank)
				prev, seen := scores[e.DocID]
				switch {
				case !seen:
					scores[e.DocID] = w
				case opts.Combine == pool.CombineMax:
					scores[e.DocID] = max(prev, w)
				default:
					scores[e.DocID] = prev + w
				}
			}
		}
		byQuery[q] = opts.MaxDocs.Apply(q, pool.RankWeights(scores))
	}

	return emit(fmt.Sprintf("rank_biased_precision_fusion_p=%.2f_%s", opts.P, opts.Combine), byQuery)
}
