package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/engine"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/fusion"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/spec"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/topic"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/trecfile"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"golang.org/x/sync/errgroup"
)

type Runner struct {
	config Config
}

func New(cfg Config) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if len(cfg.Measures) == 0 {
		cfg.Measures = metrics.SummaryMeasures
	}
	if measures, err := metrics.CanonicalMeasures(cfg.Measures); err == nil {
		cfg.Measures = measures
	}
	return &Runner{config: cfg}
}

func (r *Runner) Config() Config { return r.config }

// Evaluate scores every run against qrels, up to Concurrency runs at a time.
// A run that fails to evaluate is reported in its RunResult and does not stop
// the others. Results keep the order of runs.
func (r *Runner) Evaluate(ctx context.Context, qrels *trec.Qrels, runs []*trec.Run) ([]RunResult, error) {
	results := make([]RunResult, len(runs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for i, run := range runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.evaluateOne(qrels, run)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) evaluateOne(qrels *trec.Qrels, run *trec.Run) RunResult {
	res := RunResult{RunID: run.System(), Source: SourceMemory}

	ev := metrics.NewEvaluator(run, qrels, r.config.Options)
	if r.config.Utility != nil {
		ev = ev.WithUtility(r.config.Utility)
	}
	rel, err := ev.EvaluateMeasures(r.config.Measures, r.config.PerQuery)
	if err != nil {
		slog.Warn("Run evaluation failed", "run", run.System(), "error", err)
		res.Err = err
		return res
	}

	slog.Debug("Run evaluated", "run", run.System(), "rows", len(rel.Rows))
	res.Relation = rel
	return res
}

type loadedRun struct {
	run     *trec.Run
	source  string
	latency *engine.LatencyStats
	err     error
}

// RunSpec executes a whole job: load qrels and runs, fetch engine runs, fuse,
// write pools, then evaluate every run. Per-run load failures are recorded
// and skipped; a missing qrels file aborts.
func (r *Runner) RunSpec(ctx context.Context, s *spec.EvalSpec, executors map[string]engine.Executor) (*BatchResult, error) {
	qrels, err := trecfile.ReadQrelsFile(s.Qrels)
	if err != nil {
		return nil, fmt.Errorf("load qrels: %w", err)
	}
	if s.Utility != nil && r.config.Utility == nil {
		u, err := LoadUtility(s.Utility)
		if err != nil {
			return nil, err
		}
		cfg := r.config
		cfg.Utility = u
		r = New(cfg)
	}

	loaded, order, err := r.loadRuns(ctx, s, executors)
	if err != nil {
		return nil, err
	}

	for _, job := range s.Fusions {
		lr := loadedRun{source: SourceFusion}
		inputs, err := pick(loaded, job.Runs)
		if err == nil {
			var fused *trec.Run
			fused, err = fusion.Fuse(inputs, job.FusionParams())
			if err == nil {
				lr.run = fused.WithSystem(job.Name)
			}
		}
		if err != nil {
			err = fmt.Errorf("fusion %q: %w", job.Name, err)
			slog.Warn("Fusion failed", "fusion", job.Name, "error", err)
		}
		lr.err = err
		loaded[job.Name] = lr
		order = append(order, job.Name)
	}

	br := &BatchResult{Name: s.Name, Config: r.config}

	for _, job := range s.Pools {
		if len(job.Runs) == 0 {
			job.Runs = usable(loaded, order)
		}
		pf, err := buildPool(loaded, job)
		if err != nil {
			return nil, err
		}
		br.Pools = append(br.Pools, pf)
	}

	var runs []*trec.Run
	var idx []int
	for i, name := range order {
		lr := loaded[name]
		br.Runs = append(br.Runs, RunResult{RunID: name, Source: lr.source, Latency: lr.latency, Err: lr.err})
		if lr.err == nil {
			runs = append(runs, lr.run)
			idx = append(idx, i)
		}
	}

	evaluated, err := r.Evaluate(ctx, qrels, runs)
	if err != nil {
		return nil, err
	}
	for j, res := range evaluated {
		i := idx[j]
		br.Runs[i].Relation = res.Relation
		br.Runs[i].Err = res.Err
	}

	slog.Info("Job finished", "job", s.Name, "runs", len(br.Runs), "failed", len(br.Failures()), "pools", len(br.Pools))
	return br, nil
}

func (r *Runner) loadRuns(ctx context.Context, s *spec.EvalSpec, executors map[string]engine.Executor) (map[string]loadedRun, []string, error) {
	loaded := make(map[string]loadedRun, len(s.Runs))
	order := make([]string, 0, len(s.Runs)+len(s.Fusions))

	var topics *topic.Set
	for _, src := range s.Runs {
		order = append(order, src.Name)

		if src.Path != "" {
			run, err := trecfile.ReadRunFile(src.Path)
			if err != nil {
				slog.Warn("Run load failed", "run", src.Name, "path", src.Path, "error", err)
				loaded[src.Name] = loadedRun{source: SourceFile, err: err}
				continue
			}
			loaded[src.Name] = loadedRun{run: run.WithSystem(src.Name), source: SourceFile}
			continue
		}

		exec, ok := executors[src.Engine]
		if !ok {
			return nil, nil, fmt.Errorf("run %q: no executor for engine %q", src.Name, src.Engine)
		}
		if topics == nil {
			var err error
			if topics, err = topic.LoadFromFile(s.Topics); err != nil {
				return nil, nil, fmt.Errorf("load topics: %w", err)
			}
		}

		res, err := engine.Fetch(ctx, exec, topics, engine.FetchOptions{
			Depth:   r.config.Fetch.Depth,
			Workers: r.config.Fetch.Workers,
			Warmup:  r.config.Fetch.Warmup,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			slog.Warn("Run fetch failed", "run", src.Name, "engine", src.Engine, "error", err)
			loaded[src.Name] = loadedRun{source: SourceEngine, err: err}
			continue
		}
		loaded[src.Name] = loadedRun{run: res.Run.WithSystem(src.Name), source: SourceEngine, latency: &res.Latency}
	}

	return loaded, order, nil
}

func pick(loaded map[string]loadedRun, names []string) ([]*trec.Run, error) {
	runs := make([]*trec.Run, 0, len(names))
	for _, name := range names {
		lr, ok := loaded[name]
		if !ok {
			return nil, fmt.Errorf("unknown run %q", name)
		}
		if lr.err != nil {
			return nil, fmt.Errorf("input run %q failed: %w", name, lr.err)
		}
		runs = append(runs, lr.run)
	}
	return runs, nil
}

func usable(loaded map[string]loadedRun, order []string) []string {
	var names []string
	for _, name := range order {
		if loaded[name].err == nil {
			names = append(names, name)
		}
	}
	return names
}

func buildPool(loaded map[string]loadedRun, job spec.PoolJob) (*pool.PoolFile, error) {
	runs, err := pick(loaded, job.Runs)
	if err != nil {
		return nil, fmt.Errorf("pool %q: %w", job.Name, err)
	}
	p, err := pool.Build(runs, job.Strategy)
	if err != nil {
		return nil, fmt.Errorf("pool %q: %w", job.Name, err)
	}
	pf := pool.NewPoolFile(job.Name, job.Strategy, p, runs)
	if job.Output != "" {
		if err := pool.WritePoolFile(pf, job.Output); err != nil {
			return nil, fmt.Errorf("pool %q: %w", job.Name, err)
		}
		slog.Info("Pool written", "pool", job.Name, "path", job.Output, "queries", len(pf.Queries))
	}
	return pf, nil
}

// LoadUtility reads the second judgment set a job names.
func LoadUtility(u *spec.Utility) (*metrics.Utility, error) {
	qrels, err := trecfile.ReadQrelsFile(u.Qrels)
	if err != nil {
		return nil, fmt.Errorf("load utility qrels: %w", err)
	}
	return &metrics.Utility{Qrels: qrels, Goals: u.Goals, Factor: u.Factor, Strategy: u.Strategy}, nil
}
