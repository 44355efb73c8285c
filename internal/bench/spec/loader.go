package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/fusion"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFetchDepth   = 1000
	DefaultFetchWorkers = 4
	DefaultConcurrency  = 4

	FormatTable = "table"
	FormatJSON  = "json"
	FormatTrec  = "trec"

	EnginePostgres      = "postgres"
	EngineElasticsearch = "elasticsearch"
	EngineAPI           = "api"
)

var validEngineTypes = map[string]bool{
	EnginePostgres:      true,
	EngineElasticsearch: true,
	EngineAPI:           true,
}

var validFormats = []string{FormatTable, FormatJSON, FormatTrec}

// LoadFromFile parses a job file. Relative paths inside it are resolved
// against the file's directory.
func LoadFromFile(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	s.resolvePaths(filepath.Dir(path))
	return s, nil
}

func Parse(data []byte) (*EvalSpec, error) {
	var s EvalSpec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse spec YAML: %w", err)
	}
	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MetricOptions converts the YAML options into evaluator options.
func (s *EvalSpec) MetricOptions() (metrics.Options, error) {
	opts := metrics.DefaultOptions()
	tb, err := trec.ParseTieBreak(s.Options.TieBreak)
	if err != nil {
		return opts, err
	}
	opts.TieBreak = tb
	opts.RemoveUnjudged = s.Options.RemoveUnjudged
	opts.Graded = s.Options.Graded
	if s.Options.Binary != nil {
		opts.Binary = *s.Options.Binary
	}
	return opts, nil
}

// FusionParams converts a fusion job into fusion parameters.
func (j FusionJob) FusionParams() fusion.Params {
	p := fusion.Params{Method: j.Method, K: j.K, P: j.P, Combine: j.Combine, Depth: j.Depth}
	if j.MaxDocs > 0 {
		p.MaxDocs = trec.Uniform(j.MaxDocs)
	}
	return p
}

func validate(s *EvalSpec) error {
	if s.Qrels == "" {
		return fmt.Errorf("spec has no qrels")
	}
	if len(s.Runs) == 0 {
		return fmt.Errorf("spec has no runs")
	}

	if len(s.Measures) == 0 {
		s.Measures = slices.Clone(metrics.SummaryMeasures)
	}
	measures := make([]string, 0, len(s.Measures))
	for _, m := range s.Measures {
		c, err := metrics.CanonicalMeasure(m)
		if err != nil {
			return fmt.Errorf("measure %q: %w", m, err)
		}
		if !slices.Contains(measures, c) {
			measures = append(measures, c)
		}
	}
	s.Measures = measures

	if s.Utility != nil && s.Utility.Qrels == "" {
		return fmt.Errorf("utility has no qrels")
	}
	for _, m := range s.Measures {
		if metrics.NeedsUtility(m) && s.Utility == nil {
			return fmt.Errorf("measure %q needs a utility block", m)
		}
	}
	if _, err := s.MetricOptions(); err != nil {
		return err
	}

	for name, eng := range s.Engines {
		if eng.Type == "" {
			return fmt.Errorf("engine %q has no type", name)
		}
		if !validEngineTypes[eng.Type] {
			return fmt.Errorf("engine %q has invalid type %q", name, eng.Type)
		}
		if eng.Connection == "" {
			return fmt.Errorf("engine %q has no connection", name)
		}
	}

	names := make(map[string]bool)
	needsTopics := false
	for i, r := range s.Runs {
		if r.Name == "" {
			return fmt.Errorf("run at index %d has no name", i)
		}
		if names[r.Name] {
			return fmt.Errorf("duplicate run name %q", r.Name)
		}
		names[r.Name] = true

		switch {
		case r.Path != "" && r.Engine != "":
			return fmt.Errorf("run %q sets both path and engine", r.Name)
		case r.Path == "" && r.Engine == "":
			return fmt.Errorf("run %q has neither path nor engine", r.Name)
		case r.Engine != "":
			if _, ok := s.Engines[r.Engine]; !ok {
				return fmt.Errorf("run %q references unknown engine %q", r.Name, r.Engine)
			}
			needsTopics = true
		}
	}
	if needsTopics && s.Topics == "" {
		return fmt.Errorf("engine runs need a topics file")
	}

	for i, f := range s.Fusions {
		if f.Name == "" {
			return fmt.Errorf("fusion at index %d has no name", i)
		}
		if names[f.Name] {
			return fmt.Errorf("fusion %q reuses a run name", f.Name)
		}
		if err := fusion.ValidateMethod(f.Method); err != nil {
			return fmt.Errorf("fusion %q: %w", f.Name, err)
		}
		if len(f.Runs) == 0 {
			return fmt.Errorf("fusion %q has no runs", f.Name)
		}
		for _, ref := range f.Runs {
			if !names[ref] {
				return fmt.Errorf("fusion %q references unknown run %q", f.Name, ref)
			}
		}
		names[f.Name] = true
	}

	for i := range s.Pools {
		p := &s.Pools[i]
		if p.Name == "" {
			return fmt.Errorf("pool at index %d has no name", i)
		}
		if p.Output == "" {
			return fmt.Errorf("pool %q has no output", p.Name)
		}
		p.Strategy = p.Strategy.WithDefaults()
		if err := p.Strategy.Validate(); err != nil {
			return fmt.Errorf("pool %q: %w", p.Name, err)
		}
		for _, ref := range p.Runs {
			if !names[ref] {
				return fmt.Errorf("pool %q references unknown run %q", p.Name, ref)
			}
		}
	}

	if s.Fetch.Depth <= 0 {
		s.Fetch.Depth = DefaultFetchDepth
	}
	if s.Fetch.Workers <= 0 {
		s.Fetch.Workers = DefaultFetchWorkers
	}
	if s.Concurrency <= 0 {
		s.Concurrency = DefaultConcurrency
	}
	if s.Output.Format == "" {
		s.Output.Format = FormatTable
	}
	if !slices.Contains(validFormats, s.Output.Format) {
		return fmt.Errorf("invalid output format %q", s.Output.Format)
	}
	return nil
}

func (s *EvalSpec) resolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	s.Qrels = resolve(s.Qrels)
	s.Topics = resolve(s.Topics)
	if s.Utility != nil {
		s.Utility.Qrels = resolve(s.Utility.Qrels)
	}
	for i := range s.Runs {
		s.Runs[i].Path = resolve(s.Runs[i].Path)
	}
	for i := range s.Pools {
		s.Pools[i].Output = resolve(s.Pools[i].Output)
	}
	s.Output.Dir = resolve(s.Output.Dir)
}
