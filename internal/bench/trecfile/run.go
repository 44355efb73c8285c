package trecfile

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
)

const runColumns = 6

// ReadRun parses "query Q0 docid rank score system" lines. When system is
// empty the system column of the first line names the run.
func ReadRun(r io.Reader, system string) (*trec.Run, error) {
	var records []trec.Record
	err := scanLines(r, func(lineNo int, fields []string) error {
		if len(fields) != runColumns {
			return malformed(lineNo, fmt.Sprintf("expected %d columns, got %d", runColumns, len(fields)))
		}
		rank, err := strconv.Atoi(fields[3])
		if err != nil {
			return apperr.NewValidationWrap(fmt.Sprintf("line %d: invalid rank %q", lineNo, fields[3]), err)
		}
		score, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return apperr.NewValidationWrap(fmt.Sprintf("line %d: invalid score %q", lineNo, fields[4]), err)
		}
		if system == "" {
			system = fields[5]
		}
		records = append(records, trec.Record{Query: fields[0], DocID: fields[2], Rank: rank, Score: score})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trec.NewRun(system, records)
}

// ReadRunFile reads a run file, naming the run after the file when the
// system column is empty.
func ReadRunFile(path string) (*trec.Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run file: %w", err)
	}
	defer f.Close()

	run, err := ReadRun(f, "")
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", path, err)
	}
	if run.System() == "" {
		run = run.WithSystem(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	slog.Info("Run loaded", "path", path, "system", run.System(), "queries", len(run.Queries()), "documents", run.Len())
	return run, nil
}

// WriteRun writes run ranked with tb, renumbering ranks from 1 per query.
func WriteRun(w io.Writer, run *trec.Run, tb trec.TieBreak) error {
	bw := bufio.NewWriter(w)
	for _, rec := range run.Records(tb) {
		if _, err := fmt.Fprintf(bw, "%s Q0 %s %d %s %s\n", rec.Query, rec.DocID, rec.Rank, formatScore(rec.Score), run.System()); err != nil {
			return fmt.Errorf("write run: %w", err)
		}
	}
	return bw.Flush()
}

func WriteRunFile(path string, run *trec.Run, tb trec.TieBreak) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create run file: %w", err)
	}
	if err := WriteRun(f, run, tb); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close run file: %w", err)
	}
	slog.Info("Run written", "path", path, "system", run.System(), "documents", run.Len())
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// scanLines calls fn with the whitespace-separated fields of every non-blank
// line.
func scanLines(r io.Reader, fn func(lineNo int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if err := fn(lineNo, fields); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}

func malformed(lineNo int, reason string) error {
	return apperr.NewValidation(fmt.Sprintf("line %d: %s", lineNo, reason))
}
