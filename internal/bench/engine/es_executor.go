package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// IDFieldDocumentID reads the docid from the hit's _id instead of _source.
const IDFieldDocumentID = "_id"

type EsConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
	// IDField is the _source field holding the docid.
	IDField string
	// Fields restricts query_string to these fields.
	Fields []string
}

type EsExecutor struct {
	name   string
	client *elasticsearch.TypedClient
	cfg    EsConfig
}

func NewEsExecutor(name string, cfg EsConfig) (*EsExecutor, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" && cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewTypedClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	if cfg.IDField == "" {
		cfg.IDField = "id"
	}
	return &EsExecutor{name: name, client: client, cfg: cfg}, nil
}

// Execute runs query as a query_string query, or sends it verbatim as the
// search body when it is a JSON object.
func (e *EsExecutor) Execute(ctx context.Context, query string, depth int) (*Execution, error) {
	req := e.client.Search().Index(e.cfg.Index)

	if body := strings.TrimSpace(query); strings.HasPrefix(body, "{") {
		req = req.Raw(strings.NewReader(body))
	} else {
		req = req.Query(&types.Query{
			QueryString: &types.QueryStringQuery{
				Query:  query,
				Fields: e.cfg.Fields,
			},
		}).Size(depth).TrackScores(true)
	}

	start := time.Now()
	res, err := req.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	latency := time.Since(start)

	hits, err := e.mapHits(res.Hits.Hits)
	if err != nil {
		return nil, err
	}

	var total int64
	if res.Hits.Total != nil {
		total = res.Hits.Total.Value
	}
	return &Execution{Hits: hits, TotalMatches: total, Latency: latency}, nil
}

func (e *EsExecutor) mapHits(raw []types.Hit) ([]Hit, error) {
	hits := make([]Hit, 0, len(raw))
	scored := true
	for _, h := range raw {
		id, err := e.docID(h)
		if err != nil {
			return nil, err
		}
		hit := Hit{DocID: id}
		if h.Score_ != nil {
			hit.Score = float64(*h.Score_)
		} else {
			scored = false
		}
		hits = append(hits, hit)
	}
	if !scored {
		scoreByPosition(hits)
	}
	return hits, nil
}

func (e *EsExecutor) docID(h types.Hit) (string, error) {
	if e.cfg.IDField == IDFieldDocumentID {
		if h.Id_ == nil {
			return "", fmt.Errorf("es hit has no _id")
		}
		return *h.Id_, nil
	}

	var source map[string]any
	if err := json.Unmarshal(h.Source_, &source); err != nil {
		return "", fmt.Errorf("es parse _source: %w", err)
	}
	v, ok := source[e.cfg.IDField]
	if !ok || v == nil {
		return "", fmt.Errorf("es hit has no %q field", e.cfg.IDField)
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

func (e *EsExecutor) Name() string { return e.name }
func (e *EsExecutor) Close() error { return nil }

