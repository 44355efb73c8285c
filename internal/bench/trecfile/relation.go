package trecfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
)

// WriteRelation writes the trec_eval layout: "metric<TAB>query<TAB>value",
// led by the runid row. Count metrics are written as integers.
func WriteRelation(w io.Writer, rel *metrics.Relation) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%-22s\t%s\t%s\n", metrics.RunIDRow, metrics.AllQueries, rel.RunID); err != nil {
		return fmt.Errorf("write relation: %w", err)
	}
	for _, row := range rel.Rows {
		if _, err := fmt.Fprintf(bw, "%-22s\t%s\t%s\n", row.Metric, row.Query, formatValue(row.Metric, row.Value)); err != nil {
			return fmt.Errorf("write relation: %w", err)
		}
	}
	return bw.Flush()
}

func formatValue(metric string, v float64) string {
	if strings.HasPrefix(metric, "num_") && v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// ReadRelation parses trec_eval output. A missing runid row leaves RunID empty.
func ReadRelation(r io.Reader) (*metrics.Relation, error) {
	rel := metrics.NewRelation("")
	err := scanLines(r, func(lineNo int, fields []string) error {
		if len(fields) != 3 {
			return malformed(lineNo, fmt.Sprintf("expected 3 columns, got %d", len(fields)))
		}
		if fields[0] == metrics.RunIDRow {
			rel.RunID = fields[2]
			return nil
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return apperr.NewValidationWrap(fmt.Sprintf("line %d: invalid value %q", lineNo, fields[2]), err)
		}
		rel.Add(fields[0], fields[1], v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}
