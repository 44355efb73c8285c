package topic

import "maps"

// Set is a list of information needs, with optional engine-specific query
// templates.
type Set struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Templates   []*QueryTemplate `yaml:"templates"`
	Topics      []Topic          `yaml:"topics"`

	registry *TemplateRegistry
}

type Topic struct {
	ID     string         `yaml:"id"`
	Query  string         `yaml:"query"`
	Params TemplateParams `yaml:"params,omitempty"`
	// Engines overrides the query sent to a named engine.
	Engines map[string]EngineQuery `yaml:"engines,omitempty"`
}

// EngineQuery is either an inline query or a reference to a registered
// template, rendered with the topic params plus its own.
type EngineQuery struct {
	Template string         `yaml:"template,omitempty"`
	Query    string         `yaml:"query,omitempty"`
	Params   TemplateParams `yaml:"params,omitempty"`
}

// Built-in params available to every template.
const (
	ParamQuery = "query"
	ParamDepth = "depth"
	ParamTopic = "topic"
)

// Resolve returns the query text to send to engine for topic t. Without an
// engine override the topic text is used as is.
func (s *Set) Resolve(t Topic, engine string, depth int) (string, error) {
	eq, ok := t.Engines[engine]
	if !ok {
		return t.Query, nil
	}

	params := TemplateParams{ParamQuery: t.Query, ParamDepth: depth, ParamTopic: t.ID}
	maps.Copy(params, t.Params)
	maps.Copy(params, eq.Params)

	if eq.Query != "" {
		return render(t.ID+"/"+engine, eq.Query, params)
	}
	tmpl, ok := s.registry.Get(eq.Template)
	if !ok {
		return "", errUnknownTemplate(t.ID, engine, eq.Template)
	}
	return tmpl.Render(params)
}

// IDs lists topic ids in file order.
func (s *Set) IDs() []string {
	ids := make([]string, len(s.Topics))
	for i, t := range s.Topics {
		ids[i] = t.ID
	}
	return ids
}
