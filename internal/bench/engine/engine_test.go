package engine

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/topic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const esSearchResponse = `{
  "took": 3,
  "timed_out": false,
  "hits": {
    "total": {"value": 42, "relation": "eq"},
    "max_score": 2.5,
    "hits": [
      {"_index": "robust", "_id": "a", "_score": 2.5, "_source": {"docno": "FT-1"}},
      {"_index": "robust", "_id": "b", "_score": 1.0, "_source": {"docno": "FT-2"}}
    ]
  }
}`

func newFakeES(t *testing.T, body string, seen *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			b, _ := io.ReadAll(r.Body)
			*seen = r.URL.Path + " " + string(b)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEsExecutor(t *testing.T) {
	t.Run("source id field", func(t *testing.T) {
		var seen string
		srv := newFakeES(t, esSearchResponse, &seen)
		exec, err := NewEsExecutor("es", EsConfig{Addresses: []string{srv.URL}, Index: "robust", IDField: "docno"})
		require.NoError(t, err)

		res, err := exec.Execute(context.Background(), "black bear", 10)
		require.NoError(t, err)
		assert.Equal(t, int64(42), res.TotalMatches)
		assert.Equal(t, []Hit{{"FT-1", 2.5}, {"FT-2", 1.0}}, res.Hits)
		assert.Contains(t, seen, "/robust/_search")
		assert.Contains(t, seen, "black bear")
	})

	t.Run("document _id", func(t *testing.T) {
		srv := newFakeES(t, esSearchResponse, nil)
		exec, err := NewEsExecutor("es", EsConfig{Addresses: []string{srv.URL}, Index: "robust", IDField: IDFieldDocumentID})
		require.NoError(t, err)

		res, err := exec.Execute(context.Background(), "q", 10)
		require.NoError(t, err)
		assert.Equal(t, "a", res.Hits[0].DocID)
		assert.Equal(t, "b", res.Hits[1].DocID)
	})

	t.Run("raw body is sent verbatim", func(t *testing.T) {
		var seen string
		srv := newFakeES(t, esSearchResponse, &seen)
		exec, err := NewEsExecutor("es", EsConfig{Addresses: []string{srv.URL}, Index: "robust", IDField: "docno"})
		require.NoError(t, err)

		_, err = exec.Execute(context.Background(), `{"query":{"match":{"title":"bear"}},"size":5}`, 10)
		require.NoError(t, err)
		assert.Contains(t, seen, `"match"`)
	})

	t.Run("missing id field", func(t *testing.T) {
		srv := newFakeES(t, esSearchResponse, nil)
		exec, err := NewEsExecutor("es", EsConfig{Addresses: []string{srv.URL}, Index: "robust", IDField: "nope"})
		require.NoError(t, err)

		_, err = exec.Execute(context.Background(), "q", 10)
		assert.ErrorContains(t, err, `no "nope" field`)
	})
}

func TestAPIExecutor(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		switch r.URL.Path {
		case "/search":
			_, _ = io.WriteString(w, `{"total_matches": 3, "hits": [{"id": "d1", "score": 0.9}, {"id": "d2", "score": 0.4}]}`)
		case "/v1/articles":
			_, _ = io.WriteString(w, `{"total_matches": 2, "hits": [{"article": {"id": "x"}}, {"article": {"id": "y"}}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, "not found")
		}
	}))
	defer srv.Close()

	exec := NewAPIExecutor("api", srv.URL)

	t.Run("plain query", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), "bears", 7)
		require.NoError(t, err)
		assert.Equal(t, "q=bears&size=7", gotQuery)
		assert.Equal(t, int64(3), res.TotalMatches)
		assert.Equal(t, []Hit{{"d1", 0.9}, {"d2", 0.4}}, res.Hits)
	})

	t.Run("descriptor with unscored hits", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), `{"path": "/v1/articles", "params": {"query": "bears"}}`, 10)
		require.NoError(t, err)
		assert.Equal(t, "query=bears", gotQuery)
		assert.Equal(t, []Hit{{"x", 2}, {"y", 1}}, res.Hits)
	})

	t.Run("status error", func(t *testing.T) {
		_, err := exec.Execute(context.Background(), `{"path": "/missing"}`, 10)
		assert.ErrorContains(t, err, "api status 404")
	})
}

func TestRowsToHits(t *testing.T) {
	id := uuid.MustParse("7f1b8a56-0c2e-4b8e-9a5d-2f6c1e3b4a5d")

	t.Run("scored rows", func(t *testing.T) {
		hits, err := rowsToHits([]map[string]any{
			{"id": "d1", "score": float32(0.5)},
			{"id": int64(42), "score": 0.25},
		})
		require.NoError(t, err)
		assert.Equal(t, []Hit{{"d1", 0.5}, {"42", 0.25}}, hits)
	})

	t.Run("unscored rows keep order", func(t *testing.T) {
		hits, err := rowsToHits([]map[string]any{
			{"id": [16]byte(id)},
			{"id": "d2"},
		})
		require.NoError(t, err)
		assert.Equal(t, []Hit{{id.String(), 2}, {"d2", 1}}, hits)
	})

	t.Run("missing id column", func(t *testing.T) {
		_, err := rowsToHits([]map[string]any{{"title": "x"}})
		assert.ErrorContains(t, err, `no "id" column`)
	})
}

type fakeExecutor struct {
	mu      sync.Mutex
	calls   int
	results map[string][]Hit
	fail    string
}

func (f *fakeExecutor) Execute(_ context.Context, query string, depth int) (*Execution, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if query == f.fail {
		return nil, errors.New("boom")
	}
	hits := f.results[query]
	return &Execution{Hits: hits, TotalMatches: int64(len(hits)), Latency: time.Millisecond}, nil
}

func (f *fakeExecutor) Name() string { return "fake" }
func (f *fakeExecutor) Close() error { return nil }

func TestFetch(t *testing.T) {
	set := topic.FromMap(map[string]string{"401": "bears", "402": "wolves"})

	t.Run("builds a run in topic order", func(t *testing.T) {
		exec := &fakeExecutor{results: map[string][]Hit{
			"bears":  {{"d1", 3}, {"d2", 2}, {"d1", 1}, {"d3", 0.5}},
			"wolves": {{"w1", 1}},
		}}

		res, err := Fetch(context.Background(), exec, set, FetchOptions{Depth: 3, Workers: 2, Warmup: 1})
		require.NoError(t, err)

		assert.Equal(t, "fake", res.Run.System())
		assert.Equal(t, []string{"d1", "d2", "d3"}, res.Run.TopDocuments("401", 10))
		assert.Equal(t, []string{"w1"}, res.Run.TopDocuments("402", 10))
		assert.Equal(t, int64(4), res.TotalMatches["401"])
		assert.Equal(t, 2, res.Latency.SampleCount)
		assert.Equal(t, 4, exec.calls)
	})

	t.Run("duplicates do not use up depth", func(t *testing.T) {
		exec := &fakeExecutor{results: map[string][]Hit{
			"bears":  {{"a", 3}, {"a", 2}, {"b", 1}, {"c", 0.5}},
			"wolves": {{"w1", 2}, {"w2", 1}, {"w3", 0.5}},
		}}

		res, err := Fetch(context.Background(), exec, set, FetchOptions{Depth: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, res.Run.TopDocuments("401", 10))
		assert.Equal(t, []string{"w1", "w2"}, res.Run.TopDocuments("402", 10))
	})

	t.Run("topic failure aborts", func(t *testing.T) {
		exec := &fakeExecutor{fail: "wolves"}
		_, err := Fetch(context.Background(), exec, set, FetchOptions{Depth: 10})
		assert.ErrorContains(t, err, `topic "402"`)
	})

	t.Run("engine override is rendered", func(t *testing.T) {
		raw := `
name: t
topics:
  - id: "1"
    query: bears
    engines:
      fake:
        query: "{{query}} AND habitat"
`
		s, err := topic.Parse([]byte(raw))
		require.NoError(t, err)
		exec := &fakeExecutor{results: map[string][]Hit{"bears AND habitat": {{"h1", 1}}}}

		res, err := Fetch(context.Background(), exec, s, FetchOptions{Depth: 5})
		require.NoError(t, err)
		assert.Equal(t, []string{"h1"}, res.Run.TopDocuments("1", 5))
	})

	t.Run("invalid depth", func(t *testing.T) {
		_, err := Fetch(context.Background(), &fakeExecutor{}, set, FetchOptions{})
		assert.Error(t, err)
	})
}

func TestSplitAddresses(t *testing.T) {
	assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, splitAddresses(" http://a:9200, http://b:9200 ,"))
}
