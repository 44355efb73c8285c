//go:build integration

package router

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/dto"
	"github.com/DjordjeVuckovic/trec-hunter/internal/storage/pg"
	pkgtesting "github.com/DjordjeVuckovic/trec-hunter/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateHandlerWithPgStore(t *testing.T) {
	ctx := context.Background()
	container := pkgtesting.NewPGContainerWithCleanup(ctx, t)

	connPool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: container.ConnString})
	require.NoError(t, err)
	t.Cleanup(connPool.Close)

	e := newTestEcho(WithResultStore(pg.NewStorer(connPool)))

	rec := do(t, e, http.MethodPost, "/api/v1/evaluate", evaluateBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created dto.EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.ReportID)

	rec = do(t, e, http.MethodGet, "/api/v1/reports/"+created.ReportID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored dto.EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	require.Len(t, stored.Relations, 2)
	assert.Equal(t, "a", stored.Relations[0].RunID)

	rr, ok := stored.Relations[0].Get("recip_rank", metrics.AllQueries)
	require.True(t, ok)
	assert.InDelta(t, 0.75, rr, 1e-9)
}
