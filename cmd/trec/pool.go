package main

import (
	"log/slog"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/spf13/cobra"
)

func poolCmd() *cobra.Command {
	var (
		strategy pool.Strategy
		k        int
		name     string
		output   string
		storeDSN string
	)
	cmd := &cobra.Command{
		Use:   "pool RUN...",
		Short: "Build a judgment pool from run files",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runs := readRunFiles(args)
			strategy.K = &k
			s := strategy.WithDefaults()

			p, err := pool.Build(runs, s)
			if err != nil {
				fail("Failed to build pool", err, "strategy", s.Name)
			}
			if name == "" {
				name = s.Name
			}
			pf := pool.NewPoolFile(name, s, p, runs)

			if err := pool.WritePoolFile(pf, output); err != nil {
				fail("Failed to write pool file", err, "path", output)
			}
			slog.Info("Pool file written", "path", output, "queries", len(pf.Queries), "docs", p.Len())

			if storeDSN != "" {
				store, connPool := openStore(cmd.Context(), storeDSN)
				defer connPool.Close()
				id, err := store.SavePool(cmd.Context(), pf)
				if err != nil {
					fail("Failed to store pool", err)
				}
				slog.Info("Pool stored", "id", id)
			}
		},
	}

	cmd.Flags().StringVar(&strategy.Name, "strategy", pool.StrategyTopX, "pooling strategy: topX, rbp or rrf")
	cmd.Flags().IntVar(&strategy.TopX, "top-x", pool.DefaultTopX, "documents pooled per query")
	cmd.Flags().Float64Var(&strategy.P, "p", pool.DefaultP, "rbp persistence")
	cmd.Flags().StringVar(&strategy.Combine, "combine", "", "rbp weight combination: sum or max")
	cmd.Flags().IntVar(&k, "k", pool.DefaultK, "rrf rank offset")
	cmd.Flags().StringVar(&name, "name", "", "pool name, defaults to the strategy")
	cmd.Flags().StringVarP(&output, "output", "o", "", "pool YAML file to write")
	cmd.Flags().StringVar(&storeDSN, "store-dsn", "", "PostgreSQL result store to persist the pool in")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
