package report

import (
	"math"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/compare"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/runner"
	"github.com/google/uuid"
)

// Generate lists measures under the names their results carry, so "rbp_0.8"
// is reported as "rbp_0.80".
func Generate(br *runner.BatchResult) *Report {
	measures, err := metrics.CanonicalMeasures(br.Config.Measures)
	if err != nil {
		measures = br.Config.Measures
	}

	r := &Report{
		Meta: Meta{
			ID:          uuid.New(),
			Name:        br.Name,
			Timestamp:   time.Now().UTC(),
			PerQuery:    br.Config.PerQuery,
			Environment: NewEnvironmentInfo(),
		},
		Measures: measures,
	}

	for _, rr := range br.Runs {
		r.Systems = append(r.Systems, systemReport(rr))
	}

	if len(measures) > 0 {
		r.Ranking = rank(br.Relations(), measures[0])
	}

	for _, pf := range br.Pools {
		ps := PoolSummary{Name: pf.Name, Strategy: pf.Strategy.Name, Queries: len(pf.Queries)}
		for _, q := range pf.Queries {
			ps.Docs += len(q.Docs)
		}
		r.Pools = append(r.Pools, ps)
	}

	return r
}

func systemReport(rr runner.RunResult) SystemReport {
	sr := SystemReport{RunID: rr.RunID, Source: rr.Source, Latency: rr.Latency}
	if rr.Err != nil {
		sr.Error = rr.Err.Error()
	}
	if rr.Relation == nil {
		return sr
	}

	sr.Summary = make(map[string]float64)
	for _, row := range rr.Relation.Rows {
		if math.IsNaN(row.Value) || math.IsInf(row.Value, 0) {
			continue
		}
		if row.Query == metrics.AllQueries {
			sr.Summary[row.Metric] = row.Value
		} else {
			sr.PerQuery = append(sr.PerQuery, row)
		}
	}
	return sr
}

func rank(relations []*metrics.Relation, metric string) []RankedSystem {
	sorted := compare.SortSystems(relations, metric)
	out := make([]RankedSystem, len(sorted))
	for i, s := range sorted {
		out[i] = RankedSystem{Rank: i + 1, RunID: s.RunID}
		if !math.IsNaN(s.Value) {
			v := s.Value
			out[i].Value = &v
		}
	}
	return out
}
