package topic

import (
	"fmt"
	"os"

	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
	"gopkg.in/yaml.v3"
)

func LoadFromFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse topics YAML: %w", err)
	}
	if len(s.Topics) == 0 {
		return nil, fmt.Errorf("topic set has no topics")
	}

	s.registry = NewTemplateRegistry()
	for _, t := range s.Templates {
		if err := s.registry.Register(t); err != nil {
			return nil, fmt.Errorf("register template: %w", err)
		}
	}

	seen := make(map[string]bool, len(s.Topics))
	for i, t := range s.Topics {
		if t.ID == "" {
			return nil, fmt.Errorf("topic at index %d has no id", i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate topic id %q", t.ID)
		}
		seen[t.ID] = true
		if t.Query == "" && len(t.Engines) == 0 {
			return nil, fmt.Errorf("topic %q has no query", t.ID)
		}
		for engName, eq := range t.Engines {
			if eq.Query == "" && eq.Template == "" {
				return nil, fmt.Errorf("topic %q engine %q has neither query nor template", t.ID, engName)
			}
			if eq.Template != "" {
				if _, ok := s.registry.Get(eq.Template); !ok {
					return nil, errUnknownTemplate(t.ID, engName, eq.Template)
				}
			}
		}
	}

	return &s, nil
}

// FromMap builds a topic set from id to query text.
func FromMap(topics map[string]string) *Set {
	ids := make([]string, 0, len(topics))
	for id := range topics {
		ids = append(ids, id)
	}
	trec.SortQueries(ids)

	s := &Set{registry: NewTemplateRegistry()}
	for _, id := range ids {
		s.Topics = append(s.Topics, Topic{ID: id, Query: topics[id]})
	}
	return s
}

func errUnknownTemplate(topicID, engine, template string) error {
	return fmt.Errorf("topic %q engine %q references unknown template %q", topicID, engine, template)
}
