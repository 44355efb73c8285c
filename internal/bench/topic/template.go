package topic

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// QueryTemplate is an engine query with {{name}} placeholders.
type QueryTemplate struct {
	ID    string `yaml:"id"`
	Query string `yaml:"query"`
}

type TemplateParams map[string]any

var placeholderRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render substitutes params into the template. A placeholder left without a
// value is an error.
func (t *QueryTemplate) Render(params TemplateParams) (string, error) {
	return render(t.ID, t.Query, params)
}

func render(id, query string, params TemplateParams) (string, error) {
	result := placeholderRegex.ReplaceAllStringFunc(query, func(match string) string {
		key := match[2 : len(match)-2]
		if val, ok := params[key]; ok {
			return formatValue(val)
		}
		return match
	})

	if missing := placeholders(result); len(missing) > 0 {
		return "", fmt.Errorf("template %q missing params: %v", id, missing)
	}
	return result, nil
}

func (t *QueryTemplate) RequiredParams() []string {
	return placeholders(t.Query)
}

func (t *QueryTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template has no id")
	}
	if t.Query == "" {
		return fmt.Errorf("template %q has no query", t.ID)
	}
	return nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		strs := make([]string, len(val))
		for i, item := range val {
			strs[i] = formatValue(item)
		}
		return strings.Join(strs, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// placeholders lists distinct placeholder names in order of appearance.
func placeholders(s string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderRegex.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

type TemplateRegistry struct {
	templates map[string]*QueryTemplate
}

func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]*QueryTemplate),
	}
}

func (r *TemplateRegistry) Register(t *QueryTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, exists := r.templates[t.ID]; exists {
		return fmt.Errorf("template %q already registered", t.ID)
	}
	r.templates[t.ID] = t
	return nil
}

func (r *TemplateRegistry) Get(id string) (*QueryTemplate, bool) {
	t, ok := r.templates[id]
	return t, ok
}
