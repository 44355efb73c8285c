package main

import (
	"log/slog"
	"os"
	"path/filepath"

	apiserver "github.com/DjordjeVuckovic/trec-hunter/internal/api/server"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/engine"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/runner"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/spec"
	"github.com/DjordjeVuckovic/trec-hunter/pkg/config/env"
	"github.com/spf13/cobra"
)

func benchCmd() *cobra.Command {
	var (
		specPath string
		format   string
		output   string
		storeDSN string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run an evaluation job: fetch, fuse, pool and score every run it lists",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			loadDotEnv()

			s, err := spec.LoadFromFile(specPath)
			if err != nil {
				fail("Failed to load spec", err, "path", specPath)
			}
			if s.Engines, err = engine.ApplyEnv(s.Engines); err != nil {
				fail("Invalid engine configuration", err)
			}

			cfg, err := runner.ConfigFromSpec(s)
			if err != nil {
				fail("Invalid evaluation options", err)
			}

			executors, cleanup, err := engine.CreateFromSpec(ctx, s.Engines)
			if err != nil {
				fail("Failed to create executors", err)
			}
			defer cleanup()

			br, err := runner.New(cfg).RunSpec(ctx, s, executors)
			if err != nil {
				fail("Evaluation job failed", err, "job", s.Name)
			}

			if format == "" {
				format = s.Output.Format
			}
			if output == "" {
				output = defaultOutput(s, format)
			}
			if err := writeReport(br, format, output); err != nil {
				fail("Failed to write report", err)
			}

			if storeDSN == "" && s.Output.Store {
				storeDSN = os.Getenv("RESULT_STORE_DSN")
			}
			if storeDSN == "" {
				if s.Output.Store {
					slog.Warn("Result store requested but RESULT_STORE_DSN is not set")
				}
				return
			}

			store, connPool := openStore(ctx, storeDSN)
			defer connPool.Close()
			id, err := store.SaveRelations(ctx, s.Name, br.Relations())
			if err != nil {
				fail("Failed to store results", err)
			}
			slog.Info("Results stored", "id", id, "runs", len(br.Relations()))
			for _, pf := range br.Pools {
				poolID, err := store.SavePool(ctx, pf)
				if err != nil {
					fail("Failed to store pool", err, "pool", pf.Name)
				}
				slog.Info("Pool stored", "id", poolID, "pool", pf.Name)
			}
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "evaluation job YAML")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format overriding the job: table, json or trec")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (json) or directory (trec) overriding the job")
	cmd.Flags().StringVar(&storeDSN, "store-dsn", "", "PostgreSQL result store, defaults to RESULT_STORE_DSN when the job asks to store")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

// defaultOutput places reports under the job's output dir, if any.
func defaultOutput(s *spec.EvalSpec, format string) string {
	if s.Output.Dir == "" {
		return ""
	}
	switch format {
	case spec.FormatJSON:
		name := s.Name
		if name == "" {
			name = "report"
		}
		return filepath.Join(s.Output.Dir, name+".json")
	case spec.FormatTrec:
		return s.Output.Dir
	default:
		return ""
	}
}

func loadDotEnv() {
	if err := env.LoadDotEnv(os.Getenv("APP_ENV"), apiserver.DefaultEnvPath); err != nil {
		slog.Debug("Continuing without .env", "error", err)
	}
}
