package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/api/telemetry"
	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/fusion"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/runner"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/trecfile"
	"github.com/DjordjeVuckovic/trec-hunter/internal/dto"
	"github.com/DjordjeVuckovic/trec-hunter/internal/storage/pg"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ResultStore persists evaluations and pools.
type ResultStore interface {
	SaveRelations(ctx context.Context, name string, relations []*metrics.Relation) (uuid.UUID, error)
	LoadRelations(ctx context.Context, id uuid.UUID) (*pg.StoredReport, error)
	SavePool(ctx context.Context, pf *pool.PoolFile) (uuid.UUID, error)
}

type EvalRouter struct {
	e       *echo.Echo
	metrics *telemetry.Metrics
	store   ResultStore
}

type EvalRouterOption func(*EvalRouter)

func WithResultStore(store ResultStore) EvalRouterOption {
	return func(r *EvalRouter) {
		r.store = store
	}
}

func NewEvalRouter(e *echo.Echo, m *telemetry.Metrics, opts ...EvalRouterOption) *EvalRouter {
	r := &EvalRouter{e: e, metrics: m}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *EvalRouter) Bind() {
	g := r.e.Group("/api/v1")
	g.POST("/evaluate", r.instrument(telemetry.OpEvaluate, r.evaluateHandler))
	g.POST("/fuse", r.instrument(telemetry.OpFuse, r.fuseHandler))
	g.POST("/pool", r.instrument(telemetry.OpPool, r.poolHandler))
	g.GET("/reports/:id", r.reportHandler)
}

func (r *EvalRouter) instrument(op string, h echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := h(c)
		status := telemetry.StatusSuccess
		if err != nil {
			status = telemetry.StatusFailure
		}
		r.metrics.Observe(op, status, time.Since(start).Seconds())
		return err
	}
}

// evaluateHandler godoc
// @Summary Evaluate runs against qrels
// @Description Computes trec_eval-compatible measures for each run and returns one result relation per run
// @Tags evaluation
// @Accept json
// @Produce json
// @Param request body dto.EvaluateRequest true "Qrels, runs and measures"
// @Success 200 {object} dto.EvaluateResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/evaluate [post]
func (r *EvalRouter) evaluateHandler(c echo.Context) error {
	var req dto.EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}

	qrels, err := trecfile.ReadQrels(strings.NewReader(req.Qrels))
	if err != nil {
		return err
	}
	runs, err := parseRuns(req.Runs)
	if err != nil {
		return err
	}

	cfg, err := runnerConfig(req)
	if err != nil {
		return err
	}
	if req.Utility != nil {
		uq, err := trecfile.ReadQrels(strings.NewReader(req.Utility.Qrels))
		if err != nil {
			return err
		}
		cfg.Utility = &metrics.Utility{Qrels: uq, Goals: req.Utility.Goals, Factor: req.Utility.Factor}
	}

	ctx := c.Request().Context()
	results, err := runner.New(cfg).Evaluate(ctx, qrels, runs)
	if err != nil {
		return err
	}

	resp := dto.EvaluateResponse{Relations: make([]*metrics.Relation, 0, len(results))}
	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("run %q: %w", res.RunID, res.Err)
		}
		resp.Relations = append(resp.Relations, res.Relation)
	}
	r.metrics.AddRunsEvaluated(len(results))

	if req.Store {
		if r.store == nil {
			return apperr.NewValidation("result store is not configured")
		}
		id, err := r.store.SaveRelations(ctx, "api", resp.Relations)
		if err != nil {
			return err
		}
		resp.ReportID = &id
	}

	return c.JSON(http.StatusOK, resp)
}

// fuseHandler godoc
// @Summary Fuse runs
// @Description Combines runs with comb*, reciprocal rank, rank-biased precision or vector-space fusion
// @Tags fusion
// @Accept json
// @Produce json
// @Param request body dto.FuseRequest true "Runs and fusion method"
// @Success 200 {object} dto.FuseResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/fuse [post]
func (r *EvalRouter) fuseHandler(c echo.Context) error {
	var req dto.FuseRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}

	runs, err := parseRuns(req.Runs)
	if err != nil {
		return err
	}

	p := fusion.Params{Method: req.Method, K: req.K, P: req.P, Combine: req.Combine, Depth: req.Depth}
	if req.MaxDocs > 0 {
		p.MaxDocs = trec.Uniform(req.MaxDocs)
	}
	fused, err := fusion.Fuse(runs, p)
	if err != nil {
		return err
	}

	resp := dto.FuseResponse{System: fused.System()}
	for _, rec := range fused.Records(trec.TieBreakDocIDAsc) {
		resp.Records = append(resp.Records, dto.RunRecord{Query: rec.Query, DocID: rec.DocID, Rank: rec.Rank, Score: rec.Score})
	}
	return c.JSON(http.StatusOK, resp)
}

// poolHandler godoc
// @Summary Build a judgment pool
// @Description Pools documents from runs with the topX, rbp or rrf strategy
// @Tags pooling
// @Accept json
// @Produce json
// @Param request body dto.PoolRequest true "Runs and pooling strategy"
// @Success 200 {object} dto.PoolResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/pool [post]
func (r *EvalRouter) poolHandler(c echo.Context) error {
	var req dto.PoolRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}

	runs, err := parseRuns(req.Runs)
	if err != nil {
		return err
	}

	strategy := req.Strategy.WithDefaults()
	p, err := pool.Build(runs, strategy)
	if err != nil {
		return err
	}

	name := req.Name
	if name == "" {
		name = strategy.Name
	}
	resp := dto.PoolResponse{Pool: pool.NewPoolFile(name, strategy, p, runs)}

	if req.Store {
		if r.store == nil {
			return apperr.NewValidation("result store is not configured")
		}
		id, err := r.store.SavePool(c.Request().Context(), resp.Pool)
		if err != nil {
			return err
		}
		resp.PoolID = &id
	}

	return c.JSON(http.StatusOK, resp)
}

// reportHandler godoc
// @Summary Get a stored evaluation
// @Tags evaluation
// @Produce json
// @Param id path string true "Report id"
// @Success 200 {object} dto.EvaluateResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/reports/{id} [get]
func (r *EvalRouter) reportHandler(c echo.Context) error {
	if r.store == nil {
		return echo.NewHTTPError(http.StatusNotFound, "result store is not configured")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NewValidationWrap("invalid report id", err)
	}

	report, err := r.store.LoadRelations(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, dto.EvaluateResponse{ReportID: &report.ID, Relations: report.Relations})
}

func parseRuns(payloads []dto.RunPayload) ([]*trec.Run, error) {
	if len(payloads) == 0 {
		return nil, apperr.NewValidation("at least one run is required")
	}
	runs := make([]*trec.Run, 0, len(payloads))
	for i, p := range payloads {
		run, err := trecfile.ReadRun(strings.NewReader(p.Content), p.Name)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		if run.System() == "" {
			run = run.WithSystem(fmt.Sprintf("run%d", i))
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func runnerConfig(req dto.EvaluateRequest) (runner.Config, error) {
	cfg := runner.DefaultConfig()
	cfg.PerQuery = req.PerQuery

	if len(req.Measures) > 0 {
		measures, err := metrics.CanonicalMeasures(req.Measures)
		if err != nil {
			return cfg, err
		}
		for _, m := range measures {
			if metrics.NeedsUtility(m) && req.Utility == nil {
				return cfg, apperr.NewValidation(fmt.Sprintf("measure %q needs utility judgments", m))
			}
		}
		cfg.Measures = measures
	}

	tb, err := trec.ParseTieBreak(req.Options.TieBreak)
	if err != nil {
		return cfg, err
	}
	cfg.Options.TieBreak = tb
	cfg.Options.RemoveUnjudged = req.Options.RemoveUnjudged
	cfg.Options.Graded = req.Options.Graded
	if req.Options.Binary != nil {
		cfg.Options.Binary = *req.Options.Binary
	}
	return cfg, nil
}
