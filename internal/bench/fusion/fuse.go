package fusion

import (
	"strings"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
)

const (
	MethodRRF    = "rrf"
	MethodRBP    = "rbp"
	MethodVector = "vector"

	combPrefix = "comb_"
)

// Methods lists every name Fuse accepts.
var Methods = func() []string {
	out := make([]string, 0, len(ScoreMethods)+3)
	for _, m := range ScoreMethods {
		out = append(out, combPrefix+m)
	}
	return append(out, MethodRRF, MethodRBP, MethodVector)
}()

// Params selects a fusion method by name. Zero values, and a nil K, take the
// method's defaults. A zero MaxDocs leaves comb* and vector output uncapped and keeps
// the 1000 cap of rrf and rbp.
type Params struct {
	Method  string       `json:"method"`
	K       *int         `json:"k,omitempty"`
	P       float64      `json:"p,omitempty"`
	Combine string       `json:"combine,omitempty"`
	Depth   int          `json:"depth,omitempty"`
	MaxDocs trec.MaxDocs `json:"-"`
}

func ValidateMethod(method string) error {
	for _, m := range Methods {
		if m == method {
			return nil
		}
	}
	return apperr.NewConfiguration("fusion method", method, Methods...)
}

// Fuse dispatches to the fusion method named in p.
func Fuse(runs []*trec.Run, p Params) (*trec.Run, error) {
	if err := ValidateMethod(p.Method); err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(p.Method, combPrefix):
		return Combine(runs, strings.TrimPrefix(p.Method, combPrefix), p.MaxDocs)
	case p.Method == MethodRRF:
		opts := DefaultRRFOptions()
		if p.K != nil {
			opts.K = *p.K
		}
		if p.Depth > 0 {
			opts.Depth = p.Depth
		}
		if !p.MaxDocs.IsZero() {
			opts.MaxDocs = p.MaxDocs
		}
		return ReciprocalRank(runs, opts)
	case p.Method == MethodRBP:
		opts := DefaultRBPOptions()
		if p.P > 0 {
			opts.P = p.P
		}
		if p.Combine != "" {
			opts.Combine = p.Combine
		}
		if p.Depth > 0 {
			opts.Depth = p.Depth
		}
		if !p.MaxDocs.IsZero() {
			opts.MaxDocs = p.MaxDocs
		}
		return RankBiased(runs, opts)
	default:
		return VectorSpace(runs, p.MaxDocs)
	}
}
