package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"
)

func WriteTable(r *Report, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	title := r.Meta.Name
	if title == "" {
		title = "evaluation"
	}
	fmt.Fprintf(tw, "\n=== %s ===\n\n", title)

	writeSummaryTable(tw, r)
	writeRankingTable(tw, r)
	writeLatencyTable(tw, r)
	writePoolTable(tw, r)
	if r.Meta.PerQuery {
		writePerQueryTable(tw, r)
	}

	tw.Flush()
}

func writeSummaryTable(tw *tabwriter.Writer, r *Report) {
	fmt.Fprintf(tw, "Summary (mean over judged topics)\n\n")

	header := append([]string{"Run", "Source", "num_q"}, r.Measures...)
	header = append(header, "Status")
	writeHeader(tw, header)

	for _, s := range r.Systems {
		row := []string{s.RunID, s.Source}
		if s.Error != "" {
			for range len(r.Measures) + 1 {
				row = append(row, "-")
			}
			row = append(row, "ERR: "+s.Error)
			fmt.Fprintln(tw, strings.Join(row, "\t"))
			continue
		}
		row = append(row, fmtCount(s.Summary, "num_q"))
		for _, m := range r.Measures {
			row = append(row, fmtValue(s.Summary, m))
		}
		row = append(row, "OK")
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	fmt.Fprintln(tw)
}

func writeRankingTable(tw *tabwriter.Writer, r *Report) {
	if len(r.Ranking) == 0 {
		return
	}
	fmt.Fprintf(tw, "Ranking by %s\n\n", r.Measures[0])
	writeHeader(tw, []string{"#", "Run", r.Measures[0]})
	for _, s := range r.Ranking {
		v := "N/A"
		if s.Value != nil {
			v = fmt.Sprintf("%.4f", *s.Value)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Rank, s.RunID, v)
	}
	fmt.Fprintln(tw)
}

func writeLatencyTable(tw *tabwriter.Writer, r *Report) {
	var live []SystemReport
	for _, s := range r.Systems {
		if s.Latency != nil && !s.Latency.IsZero() {
			live = append(live, s)
		}
	}
	if len(live) == 0 {
		return
	}

	fmt.Fprintf(tw, "Latency Statistics (per topic)\n\n")
	writeHeader(tw, []string{"Run", "Min", "p50", "p95", "p99", "Max", "Mean", "Stddev", "Samples"})

	for _, sr := range live {
		s := sr.Latency
		row := []string{
			sr.RunID,
			fmtDuration(s.Min),
			fmtDuration(s.P50()),
			fmtDuration(s.P95()),
			fmtDuration(s.P99()),
			fmtDuration(s.Max),
			fmtDuration(s.Mean),
			fmtDuration(s.Stddev),
			fmt.Sprintf("%d", s.SampleCount),
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	fmt.Fprintln(tw)
}

func writePoolTable(tw *tabwriter.Writer, r *Report) {
	if len(r.Pools) == 0 {
		return
	}
	fmt.Fprintf(tw, "Pools\n\n")
	writeHeader(tw, []string{"Pool", "Strategy", "Queries", "Docs"})
	for _, p := range r.Pools {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", p.Name, p.Strategy, p.Queries, p.Docs)
	}
	fmt.Fprintln(tw)
}

func writePerQueryTable(tw *tabwriter.Writer, r *Report) {
	fmt.Fprintf(tw, "Per-Query Results\n\n")
	writeHeader(tw, []string{"Run", "Query", "Metric", "Value"})

	for _, s := range r.Systems {
		for _, row := range s.PerQuery {
			if !slices.Contains(r.Measures, row.Metric) {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\n", s.RunID, row.Query, row.Metric, row.Value)
		}
	}

	fmt.Fprintln(tw)
}

func writeHeader(tw *tabwriter.Writer, header []string) {
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))
}

func fmtValue(summary map[string]float64, metric string) string {
	v, ok := summary[metric]
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.4f", v)
}

func fmtCount(summary map[string]float64, metric string) string {
	v, ok := summary[metric]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d", int64(v))
}

func fmtDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%.1fµs", float64(d.Microseconds()))
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
