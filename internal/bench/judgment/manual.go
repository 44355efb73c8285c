package judgment

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"gopkg.in/yaml.v3"
)

// Template lists every pooled document as ungraded, ready for annotators.
func Template(poolFile *pool.PoolFile) *JudgmentFile {
	jf := &JudgmentFile{
		Strategy: "manual",
		Queries:  make([]JudgmentEntry, 0, len(poolFile.Queries)),
	}

	for _, pe := range poolFile.Queries {
		entry := JudgmentEntry{
			QueryID: pe.QueryID,
			Docs:    make([]GradedDoc, 0, len(pe.Docs)),
		}
		for _, doc := range pe.Docs {
			entry.Docs = append(entry.Docs, GradedDoc{
				DocID: doc.DocID,
				Grade: Ungraded,
			})
		}
		jf.Queries = append(jf.Queries, entry)
	}
	return jf
}

func ExportForAnnotation(poolFile *pool.PoolFile, outputPath string) error {
	jf := Template(poolFile)
	if err := WriteJudgmentFile(jf, outputPath); err != nil {
		return err
	}
	slog.Info("Judgment template written", "path", outputPath, "queries", len(jf.Queries), "pending", jf.Pending())
	return nil
}

func WriteJudgmentFile(jf *JudgmentFile, outputPath string) error {
	data, err := yaml.Marshal(jf)
	if err != nil {
		return fmt.Errorf("marshal judgment file: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write judgment file: %w", err)
	}
	return nil
}

// ImportAnnotations reads a judgment file back. Entries without ids and
// grades below Ungraded are rejected.
func ImportAnnotations(path string) (*JudgmentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read judgment file: %w", err)
	}
	var jf JudgmentFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, apperr.NewValidationWrap("parse judgment file", err)
	}
	if err := jf.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &jf, nil
}

func (jf *JudgmentFile) validate() error {
	for i, entry := range jf.Queries {
		if entry.QueryID == "" {
			return apperr.NewValidation(fmt.Sprintf("query %d has no query_id", i))
		}
		for _, doc := range entry.Docs {
			if doc.DocID == "" {
				return apperr.NewValidation(fmt.Sprintf("query %s lists a document without doc_id", entry.QueryID))
			}
			if doc.Grade < Ungraded {
				return apperr.NewValidation(fmt.Sprintf("query %s document %s has invalid grade %d", entry.QueryID, doc.DocID, doc.Grade))
			}
		}
	}
	return nil
}
