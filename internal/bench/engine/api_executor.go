package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIExecutor queries a JSON search API. The query is a request descriptor
// such as {"method":"GET","path":"/search","params":{"q":"..."}}; plain text
// is sent as GET /search?q=<text>&size=<depth>.
type APIExecutor struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewAPIExecutor(name, baseURL string) *APIExecutor {
	return &APIExecutor{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type apiRequest struct {
	Method string            `json:"method"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
	Body   string            `json:"body,omitempty"`
}

func (e *APIExecutor) Execute(ctx context.Context, rawQuery string, depth int) (*Execution, error) {
	req, err := describe(rawQuery, depth)
	if err != nil {
		return nil, err
	}

	reqURL := e.baseURL + req.Path
	if len(req.Params) > 0 {
		params := url.Values{}
		for k, v := range req.Params {
			params.Set(k, v)
		}
		reqURL += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if req.Body != "" {
		bodyReader = bytes.NewBufferString(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("api request: %w", err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api status %d: %s", resp.StatusCode, string(body))
	}

	var searchResp apiSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("api parse response: %w", err)
	}

	hits := make([]Hit, 0, len(searchResp.Hits))
	scored := true
	for _, h := range searchResp.Hits {
		id := h.ID
		if id == "" && h.Article != nil {
			id = h.Article.ID
		}
		if id == "" {
			return nil, fmt.Errorf("api hit without id")
		}
		hit := Hit{DocID: id}
		if h.Score != nil {
			hit.Score = *h.Score
		} else {
			scored = false
		}
		hits = append(hits, hit)
	}
	if !scored {
		scoreByPosition(hits)
	}

	return &Execution{
		Hits:         hits,
		TotalMatches: searchResp.TotalMatches,
		Latency:      latency,
	}, nil
}

func describe(rawQuery string, depth int) (apiRequest, error) {
	if len(rawQuery) > 0 && rawQuery[0] == '{' {
		var req apiRequest
		if err := json.Unmarshal([]byte(rawQuery), &req); err != nil {
			return req, fmt.Errorf("api parse request descriptor: %w", err)
		}
		if req.Method == "" {
			req.Method = http.MethodGet
		}
		return req, nil
	}
	return apiRequest{
		Method: http.MethodGet,
		Path:   "/search",
		Params: map[string]string{"q": rawQuery, "size": strconv.Itoa(depth)},
	}, nil
}

func (e *APIExecutor) Name() string { return e.name }
func (e *APIExecutor) Close() error { return nil }

type apiSearchResponse struct {
	TotalMatches int64          `json:"total_matches"`
	Hits         []apiSearchHit `json:"hits"`
}

// apiSearchHit accepts a flat {"id","score"} hit or a nested article id.
type apiSearchHit struct {
	ID      string      `json:"id"`
	Score   *float64    `json:"score"`
	Article *apiArticle `json:"article"`
}

type apiArticle struct {
	ID string `json:"id"`
}
