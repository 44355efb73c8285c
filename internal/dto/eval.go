package dto

import (
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/google/uuid"
)

// RunPayload carries one run in TREC run format.
type RunPayload struct {
	// Name overrides the run tag in the content.
	Name    string `json:"name,omitempty" example:"bm25"`
	Content string `json:"content" example:"401 Q0 FT911-3 1 12.5 bm25"`
}

type EvalOptions struct {
	TieBreak       string `json:"tie_break,omitempty" example:"docid_desc"`
	RemoveUnjudged bool   `json:"remove_unjudged,omitempty"`
	Graded         bool   `json:"graded,omitempty"`
	Binary         *bool  `json:"binary,omitempty"`
}

type UtilityPayload struct {
	Qrels  string                  `json:"qrels" example:"401 0 FT911-3 2"`
	Factor float64                 `json:"factor,omitempty" example:"1"`
	Goals  map[string]metrics.Goal `json:"goals,omitempty"`
}

type EvaluateRequest struct {
	// Qrels is the judgment set in TREC qrels format.
	Qrels    string       `json:"qrels" example:"401 0 FT911-3 1"`
	Runs     []RunPayload `json:"runs"`
	Measures []string     `json:"measures,omitempty" example:"map,P_10"`
	PerQuery bool         `json:"per_query,omitempty"`
	Options  EvalOptions  `json:"options"`
	// Utility is a second judgment set for ubpref, urbp_X and alpha_urbp_X.
	Utility *UtilityPayload `json:"utility,omitempty"`
	// Store persists the relations when the server has a result store.
	Store bool `json:"store,omitempty"`
}

type EvaluateResponse struct {
	ReportID  *uuid.UUID          `json:"report_id,omitempty"`
	Relations []*metrics.Relation `json:"relations"`
}

type FuseRequest struct {
	Runs    []RunPayload `json:"runs"`
	Method  string       `json:"method" example:"rrf"`
	K       *int         `json:"k,omitempty" example:"60"`
	P       float64      `json:"p,omitempty" example:"0.8"`
	Combine string       `json:"combine,omitempty" example:"sum"`
	Depth   int          `json:"depth,omitempty" example:"1000"`
	MaxDocs int          `json:"max_docs,omitempty" example:"1000"`
}

type RunRecord struct {
	Query string  `json:"query"`
	DocID string  `json:"docid"`
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
}

type FuseResponse struct {
	System  string      `json:"system"`
	Records []RunRecord `json:"records"`
}

type PoolRequest struct {
	Name     string        `json:"name,omitempty" example:"depth10"`
	Runs     []RunPayload  `json:"runs"`
	Strategy pool.Strategy `json:"strategy"`
	Store    bool          `json:"store,omitempty"`
}

type PoolResponse struct {
	PoolID *uuid.UUID     `json:"pool_id,omitempty"`
	Pool   *pool.PoolFile `json:"pool"`
}
