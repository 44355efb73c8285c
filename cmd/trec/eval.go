package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/report"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/runner"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/spec"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/trecfile"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/spf13/cobra"
)

type evalFlags struct {
	measures       []string
	perQuery       bool
	tieBreak       string
	removeUnjudged bool
	graded         bool
	binary         bool
	concurrency    int
	format         string
	output         string
	utilityQrels   string
	utilityFactor  float64
}

func evalCmd() *cobra.Command {
	var f evalFlags
	cmd := &cobra.Command{
		Use:   "eval QRELS RUN...",
		Short: "Evaluate run files against a qrels file",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := f.runnerConfig()
			if err != nil {
				fail("Invalid evaluation options", err)
			}

			qrels, err := trecfile.ReadQrelsFile(args[0])
			if err != nil {
				fail("Failed to read qrels", err, "path", args[0])
			}
			if f.utilityQrels != "" {
				cfg.Utility, err = runner.LoadUtility(&spec.Utility{Qrels: f.utilityQrels, Factor: f.utilityFactor})
				if err != nil {
					fail("Failed to read utility qrels", err, "path", f.utilityQrels)
				}
			}

			runs := make([]*trec.Run, 0, len(args)-1)
			for _, path := range args[1:] {
				run, err := trecfile.ReadRunFile(path)
				if err != nil {
					fail("Failed to read run", err, "path", path)
				}
				runs = append(runs, run)
			}

			results, err := runner.New(cfg).Evaluate(cmd.Context(), qrels, runs)
			if err != nil {
				fail("Evaluation failed", err)
			}
			for i := range results {
				results[i].Source = runner.SourceFile
			}

			br := &runner.BatchResult{Name: "eval", Runs: results, Config: cfg}
			if err := writeReport(br, f.format, f.output); err != nil {
				fail("Failed to write report", err)
			}
		},
	}

	cmd.Flags().StringSliceVarP(&f.measures, "measure", "m", metrics.SummaryMeasures, "measures to compute, e.g. map,P_10,ndcg_cut_10")
	cmd.Flags().BoolVarP(&f.perQuery, "per-query", "q", false, "include per-query values")
	cmd.Flags().StringVar(&f.tieBreak, "tie-break", trec.TieBreakDocIDDesc.String(), "order of equally scored documents: docid_desc or docid_asc")
	cmd.Flags().BoolVar(&f.removeUnjudged, "remove-unjudged", false, "drop unjudged documents before cutoffs")
	cmd.Flags().BoolVar(&f.graded, "graded", false, "use exponential gain for ndcg")
	cmd.Flags().BoolVar(&f.binary, "binary", true, "count every relevant document as 1 in rbp")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", spec.DefaultConcurrency, "runs evaluated in parallel")
	cmd.Flags().StringVarP(&f.format, "format", "f", spec.FormatTable, "output format: table, json or trec")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (json) or directory (trec)")
	cmd.Flags().StringVar(&f.utilityQrels, "utility-qrels", "", "second qrels file for ubpref, urbp_X and alpha_urbp_X")
	cmd.Flags().Float64Var(&f.utilityFactor, "utility-factor", 1, "scale applied to the utility grades")

	return cmd
}

func (f evalFlags) runnerConfig() (runner.Config, error) {
	cfg := runner.DefaultConfig()
	measures, err := metrics.CanonicalMeasures(f.measures)
	if err != nil {
		return cfg, err
	}
	for _, m := range measures {
		if metrics.NeedsUtility(m) && f.utilityQrels == "" {
			return cfg, fmt.Errorf("measure %q needs --utility-qrels", m)
		}
	}
	tb, err := trec.ParseTieBreak(f.tieBreak)
	if err != nil {
		return cfg, err
	}

	cfg.Measures = measures
	cfg.PerQuery = f.perQuery
	cfg.Options.TieBreak = tb
	cfg.Options.RemoveUnjudged = f.removeUnjudged
	cfg.Options.Graded = f.graded
	cfg.Options.Binary = f.binary
	if f.concurrency > 0 {
		cfg.Concurrency = f.concurrency
	}
	return cfg, nil
}

// writeReport prints br to stdout in format, or to output when it is set.
func writeReport(br *runner.BatchResult, format, output string) error {
	for _, failed := range br.Failures() {
		slog.Warn("Run was not evaluated", "run", failed.RunID, "error", failed.Err)
	}

	switch format {
	case spec.FormatTable:
		report.WriteTable(report.Generate(br), os.Stdout)
		return nil
	case spec.FormatJSON:
		rpt := report.Generate(br)
		if output == "" {
			return report.EncodeJSON(rpt, os.Stdout)
		}
		if err := report.WriteJSON(rpt, output); err != nil {
			return err
		}
	case spec.FormatTrec:
		if output == "" {
			return report.WriteTrec(br, os.Stdout)
		}
		if err := report.WriteTrecDir(br, output); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	slog.Info("Report written", "path", output)
	return nil
}
