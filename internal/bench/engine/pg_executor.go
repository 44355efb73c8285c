package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/storage/pg"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	pgIDColumn    = "id"
	pgScoreColumn = "score"

	pgQueryTimeoutSeconds = 30
)

// PgExecutor runs SQL that selects an id column and, optionally, a score
// column, best match first.
type PgExecutor struct {
	name     string
	executor *pg.RawExecutor
	timeout  int
}

func NewPgExecutor(name string, pool *pg.ConnectionPool) *PgExecutor {
	return &PgExecutor{
		name:     name,
		executor: pg.NewRawExecutor(pool),
		timeout:  pgQueryTimeoutSeconds,
	}
}

// Execute keeps the first depth rows; TotalMatches counts every row returned.
func (e *PgExecutor) Execute(ctx context.Context, rawQuery string, depth int) (*Execution, error) {
	start := time.Now()

	result, err := e.executor.Exec(ctx, rawQuery, nil, &pg.ExecOptions{TimeoutSeconds: e.timeout, MaxRows: depth})
	if err != nil {
		return nil, fmt.Errorf("pg exec: %w", err)
	}

	latency := time.Since(start)

	hits, err := rowsToHits(result.Rows)
	if err != nil {
		return nil, err
	}

	return &Execution{
		Hits:         hits,
		TotalMatches: int64(result.TotalRows),
		Latency:      latency,
	}, nil
}

func rowsToHits(rows []map[string]any) ([]Hit, error) {
	hits := make([]Hit, 0, len(rows))
	scored := true
	for _, row := range rows {
		id, err := extractID(row[pgIDColumn])
		if err != nil {
			return nil, fmt.Errorf("pg extract id: %w", err)
		}
		hit := Hit{DocID: id}
		if raw, ok := row[pgScoreColumn]; ok && raw != nil {
			if hit.Score, err = extractScore(raw); err != nil {
				return nil, fmt.Errorf("pg extract score: %w", err)
			}
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

func (e *PgExecutor) Name() string { return e.name }
func (e *PgExecutor) Close() error { return nil }

func extractID(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case [16]byte:
		return uuid.UUID(v).String(), nil
	case uuid.UUID:
		return v.String(), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case nil:
		return "", fmt.Errorf("query returned no %q column", pgIDColumn)
	default:
		return "", fmt.Errorf("unsupported id type %T", val)
	}
}

func extractScore(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil {
			return 0, err
		}
		return f.Float64, nil
	default:
		return 0, fmt.Errorf("unsupported score type %T", val)
	}
}
