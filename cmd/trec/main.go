// Package main TREC Hunter
// @title TREC Hunter API
// @version 1.0
// @description Evaluation, fusion and pooling of ranked retrieval runs
// @contact.name API Support
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trec",
		Short: "Evaluate, fuse and pool TREC-style retrieval runs",
		Long: `trec scores ranked runs against relevance judgments with trec_eval
compatible measures, fuses runs, builds judgment pools and compares systems.

Run 'trec bench --spec job.yaml' to execute a whole evaluation job.
Run 'trec serve' to expose the same operations over HTTP.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		evalCmd(),
		fuseCmd(),
		poolCmd(),
		judgeCmd(),
		compareCmd(),
		benchCmd(),
		fetchCmd(),
		serveCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// fail logs err and terminates the process.
func fail(msg string, err error, args ...any) {
	slog.Error(msg, append(args, "error", err)...)
	os.Exit(1)
}
