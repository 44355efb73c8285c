package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/compare"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/trecfile"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/spf13/cobra"
)

func compareCmd() *cobra.Command {
	var (
		metric     string
		against    string
		method     string
		confidence float64
	)
	cmd := &cobra.Command{
		Use:   "compare EVAL...",
		Short: "Rank systems by a measure and correlate rankings across measures",
		Long: `compare reads trec_eval style result files, one per run, ranks the runs
by --metric and prints a Student-t confidence interval from the per-query values
when they are present. With --against the ranking is correlated with the ranking
under a second measure.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			relations := make([]*metrics.Relation, 0, len(args))
			for _, path := range args {
				relations = append(relations, readRelationFile(path))
			}

			ranked := compare.SortSystems(relations, metric)
			byRun := make(map[string]*metrics.Relation, len(relations))
			for _, rel := range relations {
				byRun[rel.RunID] = rel
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "rank\trunid\t%s\t±%.0f%%\n", metric, confidence*100)
			for i, s := range ranked {
				ci := formatValue(halfWidth(byRun[s.RunID], metric, confidence))
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, s.RunID, formatValue(s.Value), ci)
			}
			_ = tw.Flush()

			if against == "" {
				return
			}
			other := compare.SortSystems(relations, against)
			corr, err := compare.Correlation(ranked, other, method)
			if err != nil {
				fail("Correlation undefined", err, "method", method)
			}
			fmt.Printf("\n%s(%s, %s) = %s\n", method, metric, against, formatValue(corr))
		},
	}

	cmd.Flags().StringVarP(&metric, "metric", "m", "map", "measure systems are ranked by")
	cmd.Flags().StringVar(&against, "against", "", "second measure to correlate the ranking with")
	cmd.Flags().StringVar(&method, "method", compare.Kendall, "correlation: kendall, pearson, spearman or tau_ap")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.95, "confidence level of the interval")

	return cmd
}

// halfWidth is NaN when rel holds fewer than two per-query values.
func halfWidth(rel *metrics.Relation, metric string, confidence float64) float64 {
	perQuery := rel.ForMetric(metric)
	queries := sortedKeys(perQuery)
	values := make([]float64, 0, len(queries))
	for _, q := range queries {
		values = append(values, perQuery[q])
	}
	ci, _ := compare.ConfidenceInterval(values, confidence)
	return ci
}

func readRelationFile(path string) *metrics.Relation {
	f, err := os.Open(path)
	if err != nil {
		fail("Failed to open result file", err, "path", path)
	}
	defer f.Close()

	rel, err := trecfile.ReadRelation(f)
	if err != nil {
		fail("Failed to read result file", err, "path", path)
	}
	if rel.RunID == "" {
		rel.RunID = path
	}
	return rel
}

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	trec.SortQueries(keys)
	return keys
}
