package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/engine"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/spec"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/topic"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/trecfile"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/spf13/cobra"
)

func fetchCmd() *cobra.Command {
	var (
		name       string
		eng        spec.Engine
		topicsPath string
		opts       engine.FetchOptions
		output     string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Query a live search engine for every topic and write the ranking as a run file",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			loadDotEnv()

			engines, err := engine.ApplyEnv(map[string]spec.Engine{name: eng})
			if err != nil {
				fail("Invalid engine configuration", err)
			}
			executors, cleanup, err := engine.CreateFromSpec(ctx, engines)
			if err != nil {
				fail("Failed to create executor", err)
			}
			defer cleanup()

			set, err := topic.LoadFromFile(topicsPath)
			if err != nil {
				fail("Failed to load topics", err, "path", topicsPath)
			}

			res, err := engine.Fetch(ctx, executors[name], set, opts)
			if err != nil {
				fail("Fetch failed", err, "engine", name)
			}

			if output == "" {
				err = trecfile.WriteRun(os.Stdout, res.Run, trec.TieBreakDocIDAsc)
			} else {
				err = trecfile.WriteRunFile(output, res.Run, trec.TieBreakDocIDAsc)
			}
			if err != nil {
				fail("Failed to write run", err)
			}

			if !res.Latency.IsZero() {
				slog.Info("Latency",
					"engine", name,
					"queries", res.Latency.SampleCount,
					"p50", res.Latency.P50().Round(time.Microsecond),
					"p95", res.Latency.P95().Round(time.Microsecond),
					"p99", res.Latency.P99().Round(time.Microsecond),
				)
			}
		},
	}

	cmd.Flags().StringVar(&name, "name", "live", "system name of the fetched run")
	cmd.Flags().StringVar(&eng.Type, "type", spec.EngineElasticsearch, "engine type: postgres, elasticsearch or api")
	cmd.Flags().StringVar(&eng.Connection, "connection", "", "connection string, addresses or base URL; falls back to the environment")
	cmd.Flags().StringVar(&eng.Index, "index", "", "elasticsearch index")
	cmd.Flags().StringVar(&eng.IDField, "id-field", "", "elasticsearch _source field holding the docid, or _id")
	cmd.Flags().StringSliceVar(&eng.Fields, "fields", nil, "elasticsearch fields searched by plain queries")
	cmd.Flags().StringVar(&topicsPath, "topics", "", "topic set YAML")
	cmd.Flags().IntVar(&opts.Depth, "depth", spec.DefaultFetchDepth, "documents retrieved per topic")
	cmd.Flags().IntVar(&opts.Workers, "workers", spec.DefaultFetchWorkers, "topics queried in parallel")
	cmd.Flags().IntVar(&opts.Warmup, "warmup", 0, "queries sent and discarded before timing")
	cmd.Flags().StringVarP(&output, "output", "o", "", "run file to write, stdout when empty")
	_ = cmd.MarkFlagRequired("topics")

	return cmd
}
