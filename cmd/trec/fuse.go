package main

import (
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/fusion"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/trecfile"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/spf13/cobra"
)

func fuseCmd() *cobra.Command {
	var (
		params  fusion.Params
		k       int
		maxDocs int
		system  string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "fuse RUN...",
		Short: "Fuse run files into a single run",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runs := readRunFiles(args)
			if cmd.Flags().Changed("k") {
				params.K = &k
			}
			if maxDocs > 0 {
				params.MaxDocs = trec.Uniform(maxDocs)
			}

			fused, err := fusion.Fuse(runs, params)
			if err != nil {
				fail("Fusion failed", err, "method", params.Method)
			}
			if system != "" {
				fused = fused.WithSystem(system)
			}

			if output == "" {
				if err := trecfile.WriteRun(os.Stdout, fused, trec.TieBreakDocIDAsc); err != nil {
					fail("Failed to write fused run", err)
				}
				return
			}
			if err := trecfile.WriteRunFile(output, fused, trec.TieBreakDocIDAsc); err != nil {
				fail("Failed to write fused run", err, "path", output)
			}
			slog.Info("Fused run written", "path", output, "system", fused.System(), "entries", fused.Len())
		},
	}

	cmd.Flags().StringVar(&params.Method, "method", "rrf", "fusion method: comb_sum, comb_max, comb_min, comb_anz, comb_mnz, comb_med, rrf, rbp or vector")
	cmd.Flags().IntVar(&k, "k", fusion.DefaultK, "rrf rank offset")
	cmd.Flags().Float64Var(&params.P, "p", 0, "rbp persistence (default 0.8)")
	cmd.Flags().StringVar(&params.Combine, "combine", "", "rbp combination: sum or max")
	cmd.Flags().IntVar(&params.Depth, "depth", 0, "documents taken from each run (rrf, rbp)")
	cmd.Flags().IntVar(&maxDocs, "max-docs", 0, "documents kept per query in the fused run")
	cmd.Flags().StringVar(&system, "system", "", "system name of the fused run")
	cmd.Flags().StringVarP(&output, "output", "o", "", "run file to write, stdout when empty")

	return cmd
}

func readRunFiles(paths []string) []*trec.Run {
	runs := make([]*trec.Run, 0, len(paths))
	for _, path := range paths {
		run, err := trecfile.ReadRunFile(path)
		if err != nil {
			fail("Failed to read run", err, "path", path)
		}
		runs = append(runs, run)
	}
	return runs
}
