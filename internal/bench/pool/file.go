package pool

import (
	"fmt"
	"os"
	"slices"

	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"gopkg.in/yaml.v3"
)

type PoolFile struct {
	Name     string      `yaml:"name" json:"name"`
	Strategy Strategy    `yaml:"strategy" json:"strategy"`
	Queries  []PoolEntry `yaml:"queries" json:"queries"`
}

type PoolEntry struct {
	QueryID string      `yaml:"query_id" json:"query_id"`
	Docs    []PooledDoc `yaml:"docs" json:"docs"`
}

type PooledDoc struct {
	DocID   string   `yaml:"doc_id" json:"doc_id"`
	Sources []string `yaml:"sources" json:"sources"`
}

// NewPoolFile describes p for judgment collection, recording which runs
// retrieved each pooled document.
func NewPoolFile(name string, s Strategy, p *trec.Pool, runs []*trec.Run) *PoolFile {
	pf := &PoolFile{Name: name, Strategy: s, Queries: make([]PoolEntry, 0, len(p.Queries()))}

	for _, q := range p.Queries() {
		sources := make(map[string][]string)
		for _, run := range runs {
			for _, e := range run.Entries(q) {
				if p.Contains(q, e.DocID) {
					sources[e.DocID] = append(sources[e.DocID], run.System())
				}
			}
		}

		entry := PoolEntry{QueryID: q, Docs: make([]PooledDoc, 0, p.Size(q))}
		for _, id := range p.Docs(q) {
			src := sources[id]
			slices.Sort(src)
			entry.Docs = append(entry.Docs, PooledDoc{DocID: id, Sources: slices.Compact(src)})
		}
		pf.Queries = append(pf.Queries, entry)
	}
	return pf
}

// Pool rebuilds the pool a file describes.
func (pf *PoolFile) Pool() *trec.Pool {
	docs := make(map[string][]string, len(pf.Queries))
	for _, entry := range pf.Queries {
		for _, d := range entry.Docs {
			docs[entry.QueryID] = append(docs[entry.QueryID], d.DocID)
		}
	}
	return trec.NewPool(docs)
}

func ReadPoolFile(path string) (*PoolFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool file: %w", err)
	}
	var pf PoolFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse pool file: %w", err)
	}
	return &pf, nil
}

func WritePoolFile(pf *PoolFile, path string) error {
	data, err := yaml.Marshal(pf)
	if err != nil {
		return fmt.Errorf("marshal pool file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write pool file: %w", err)
	}
	return nil
}
