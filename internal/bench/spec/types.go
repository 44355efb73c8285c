package spec

import (
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
)

// EvalSpec describes one batch evaluation job.
type EvalSpec struct {
	Name     string   `yaml:"name"`
	Qrels    string   `yaml:"qrels"`
	Measures []string `yaml:"measures"`
	PerQuery bool     `yaml:"per_query"`
	Options  Options  `yaml:"options"`
	// Utility is required by the ubpref, urbp_X and alpha_urbp_X measures.
	Utility *Utility `yaml:"utility,omitempty"`

	Runs    []RunSource       `yaml:"runs"`
	Engines map[string]Engine `yaml:"engines"`
	// Topics is a topic set file, needed when a run comes from an engine.
	Topics string `yaml:"topics"`
	Fetch  Fetch  `yaml:"fetch"`

	Fusions []FusionJob `yaml:"fusions"`
	Pools   []PoolJob   `yaml:"pools"`

	Concurrency int    `yaml:"concurrency"`
	Output      Output `yaml:"output"`
}

type Options struct {
	TieBreak       string `yaml:"tie_break"`
	RemoveUnjudged bool   `yaml:"remove_unjudged"`
	Graded         bool   `yaml:"graded"`
	// Binary is a pointer so an omitted field keeps the default of true.
	Binary *bool `yaml:"binary"`
}

// Utility names a second judgment set, e.g. understandability grades.
type Utility struct {
	Qrels    string                  `yaml:"qrels"`
	Factor   float64                 `yaml:"factor,omitempty"`
	Strategy string                  `yaml:"strategy,omitempty"`
	Goals    map[string]metrics.Goal `yaml:"goals,omitempty"`
}

// RunSource is a run read from a TREC run file or fetched from an engine.
type RunSource struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path,omitempty"`
	Engine string `yaml:"engine,omitempty"`
}

type Engine struct {
	Type       string `yaml:"type"`
	Connection string `yaml:"connection"`
	Index      string `yaml:"index,omitempty"`
	// IDField names the document field holding the docid.
	IDField  string   `yaml:"id_field,omitempty"`
	Fields   []string `yaml:"fields,omitempty"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
}

type Fetch struct {
	Depth   int `yaml:"depth"`
	Workers int `yaml:"workers"`
	Warmup  int `yaml:"warmup"`
}

// FusionJob fuses named runs into a new run that is evaluated alongside them.
type FusionJob struct {
	Name    string   `yaml:"name"`
	Method  string   `yaml:"method"`
	Runs    []string `yaml:"runs"`
	K       *int     `yaml:"k,omitempty"`
	P       float64  `yaml:"p,omitempty"`
	Combine string   `yaml:"combine,omitempty"`
	Depth   int      `yaml:"depth,omitempty"`
	MaxDocs int      `yaml:"max_docs,omitempty"`
}

type PoolJob struct {
	Name     string        `yaml:"name"`
	Strategy pool.Strategy `yaml:"strategy"`
	Runs     []string      `yaml:"runs"`
	Output   string        `yaml:"output"`
}

type Output struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	Store  bool   `yaml:"store"`
}
