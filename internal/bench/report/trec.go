package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/runner"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/trecfile"
)

// WriteTrec writes each evaluated run's relation in trec_eval layout, one
// block per run.
func WriteTrec(br *runner.BatchResult, w io.Writer) error {
	for _, rel := range br.Relations() {
		if err := trecfile.WriteRelation(w, rel); err != nil {
			return fmt.Errorf("write relation %s: %w", rel.RunID, err)
		}
	}
	return nil
}

// WriteTrecDir writes one <runid>.eval file per evaluated run into dir.
func WriteTrecDir(br *runner.BatchResult, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, rel := range br.Relations() {
		f, err := os.Create(filepath.Join(dir, rel.RunID+".eval"))
		if err != nil {
			return fmt.Errorf("create eval file: %w", err)
		}
		if err := trecfile.WriteRelation(f, rel); err != nil {
			f.Close()
			return fmt.Errorf("write relation %s: %w", rel.RunID, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
