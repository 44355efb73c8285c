package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"text/tabwriter"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/judgment"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/trecfile"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"github.com/spf13/cobra"
)

func judgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "judge",
		Short: "Prepare, collect and compare relevance judgments",
	}
	cmd.AddCommand(
		judgeExportCmd(),
		judgeCollectCmd(),
		judgeMergeCmd(),
		judgeAgreementCmd(),
		judgeFleissCmd(),
	)
	return cmd
}

func judgeExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export POOL",
		Short: "Write an annotation template for a pool file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			pf, err := pool.ReadPoolFile(args[0])
			if err != nil {
				fail("Failed to read pool file", err, "path", args[0])
			}
			if err := judgment.ExportForAnnotation(pf, output); err != nil {
				fail("Failed to export annotation template", err)
			}
			slog.Info("Annotation template written", "path", output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "annotation template to write")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func judgeCollectCmd() *cobra.Command {
	var (
		qrelsPath string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "collect POOL",
		Short: "Grade a pool from existing qrels, leaving unknown pairs ungraded",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			pf, err := pool.ReadPoolFile(args[0])
			if err != nil {
				fail("Failed to read pool file", err, "path", args[0])
			}
			qrels, err := trecfile.ReadQrelsFile(qrelsPath)
			if err != nil {
				fail("Failed to read qrels", err, "path", qrelsPath)
			}

			jf, err := judgment.Collect(cmd.Context(), judgment.QrelsJudge{Qrels: qrels}, pf, pf.Strategy.Name)
			if err != nil {
				fail("Failed to collect judgments", err)
			}
			if err := judgment.WriteJudgmentFile(jf, output); err != nil {
				fail("Failed to write judgments", err, "path", output)
			}
			slog.Info("Judgments written", "path", output, "pending", jf.Pending())
		},
	}
	cmd.Flags().StringVar(&qrelsPath, "qrels", "", "qrels file grading the pool")
	cmd.Flags().StringVarP(&output, "output", "o", "", "judgment file to write")
	_ = cmd.MarkFlagRequired("qrels")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func judgeMergeCmd() *cobra.Command {
	var (
		basePath string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "merge ANNOTATIONS",
		Short: "Turn annotations into a qrels file, filling gaps from a base qrels",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			jf, err := judgment.ImportAnnotations(args[0])
			if err != nil {
				fail("Failed to import annotations", err, "path", args[0])
			}

			var base *trec.Qrels
			if basePath != "" {
				if base, err = trecfile.ReadQrelsFile(basePath); err != nil {
					fail("Failed to read base qrels", err, "path", basePath)
				}
			}

			merged, err := judgment.Merge(jf, base)
			if err != nil {
				fail("Failed to merge judgments", err)
			}
			if err := trecfile.WriteQrelsFile(output, merged); err != nil {
				fail("Failed to write qrels", err, "path", output)
			}
			slog.Info("Qrels written", "path", output, "judgments", merged.Len(), "pending", jf.Pending())
		},
	}
	cmd.Flags().StringVar(&basePath, "base", "", "qrels used for pairs left ungraded")
	cmd.Flags().StringVarP(&output, "output", "o", "", "qrels file to write")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func judgeAgreementCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agreement QRELS_A QRELS_B",
		Short: "Report raw agreement and Cohen's kappa between two assessors",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a := readQrels(args[0])
			b := readQrels(args[1])

			rpt, err := judgment.Agreement(a, b)
			if err != nil {
				slog.Warn("Agreement undefined", "error", err)
			}
			kappa, err := judgment.CohenKappa(a, b)
			if err != nil {
				slog.Warn("Cohen's kappa undefined", "error", err)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "common pairs\t%d\n", rpt.Common)
			fmt.Fprintf(tw, "agreement\t%s\n", formatValue(rpt.Overall))
			fmt.Fprintf(tw, "cohen kappa\t%s\n", formatValue(kappa))
			for _, q := range sortedKeys(rpt.PerTopic) {
				fmt.Fprintf(tw, "agreement %s\t%s\n", q, formatValue(rpt.PerTopic[q]))
			}
			_ = tw.Flush()
		},
	}
}

func judgeFleissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fleiss QRELS QRELS...",
		Short: "Report Fleiss' kappa over the pairs every assessor judged",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			assessors := make([]*trec.Qrels, 0, len(args))
			for _, path := range args {
				assessors = append(assessors, readQrels(path))
			}
			ratings := judgment.AlignAssessors(assessors...)
			kappa, err := judgment.FleissKappa(ratings)
			if err != nil {
				fail("Fleiss' kappa undefined", err, "pairs", len(ratings))
			}
			fmt.Printf("fleiss kappa\t%s\t(%d pairs, %d assessors)\n", formatValue(kappa), len(ratings), len(args))
		},
	}
}

func readQrels(path string) *trec.Qrels {
	q, err := trecfile.ReadQrelsFile(path)
	if err != nil {
		fail("Failed to read qrels", err, "path", path)
	}
	return q
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", v)
}
