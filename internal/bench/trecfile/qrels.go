package trecfile

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
)

const qrelsColumns = 4

// ReadQrels parses "query iteration docid relevance" lines.
func ReadQrels(r io.Reader) (*trec.Qrels, error) {
	var judgments []trec.Judgment
	err := scanLines(r, func(lineNo int, fields []string) error {
		if len(fields) != qrelsColumns {
			return malformed(lineNo, fmt.Sprintf("expected %d columns, got %d", qrelsColumns, len(fields)))
		}
		rel, err := strconv.Atoi(fields[3])
		if err != nil {
			return apperr.NewValidationWrap(fmt.Sprintf("line %d: invalid relevance %q", lineNo, fields[3]), err)
		}
		judgments = append(judgments, trec.Judgment{Query: fields[0], DocID: fields[2], Relevance: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trec.NewQrels(judgments)
}

func ReadQrelsFile(path string) (*trec.Qrels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open qrels file: %w", err)
	}
	defer f.Close()

	q, err := ReadQrels(f)
	if err != nil {
		return nil, fmt.Errorf("read qrels %s: %w", path, err)
	}
	slog.Info("Qrels loaded", "path", path, "topics", len(q.Topics()), "judgments", q.Len())
	return q, nil
}

func WriteQrels(w io.Writer, q *trec.Qrels) error {
	bw := bufio.NewWriter(w)
	for _, j := range q.Judgments() {
		if _, err := fmt.Fprintf(bw, "%s 0 %s %d\n", j.Query, j.DocID, j.Relevance); err != nil {
			return fmt.Errorf("write qrels: %w", err)
		}
	}
	return bw.Flush()
}

func WriteQrelsFile(path string, q *trec.Qrels) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create qrels file: %w", err)
	}
	if err := WriteQrels(f, q); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
