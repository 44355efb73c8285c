package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ExecOptions struct {
	TimeoutSeconds int
	// MaxRows caps the rows kept in the result. Rows past the cap are still
	// counted in TotalRows. Zero keeps every row.
	MaxRows int
}

// ExecuteResult holds the kept rows keyed by column name.
type ExecuteResult struct {
	Columns   []string
	Rows      []map[string]any
	TotalRows int
}

// RawExecutor runs arbitrary read queries, such as the retrieval SQL of a
// PostgreSQL run source.
type RawExecutor struct {
	db *pgxpool.Pool
}

func NewRawExecutor(pool *ConnectionPool) *RawExecutor {
	return &RawExecutor{db: pool.GetConn()}
}

func (e *RawExecutor) Exec(
	ctx context.Context,
	query string,
	params []any,
	opts *ExecOptions) (*ExecuteResult, error) {
	queryCtx, cancel := e.newQueryCtx(ctx, opts)
	defer cancel()

	rows, err := e.db.Query(queryCtx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := &ExecuteResult{Columns: make([]string, len(fields))}
	for i, fd := range fields {
		result.Columns[i] = fd.Name
	}

	maxRows := 0
	if opts != nil {
		maxRows = opts.MaxRows
	}

	for rows.Next() {
		result.TotalRows++
		if maxRows > 0 && len(result.Rows) >= maxRows {
			continue
		}

		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(values))
		for i, col := range result.Columns {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *RawExecutor) newQueryCtx(ctx context.Context, opts *ExecOptions) (context.Context, context.CancelFunc) {
	if opts != nil && opts.TimeoutSeconds > 0 {
		return context.WithTimeout(ctx, time.Duration(opts.TimeoutSeconds)*time.Second)
	}
	return ctx, func() {}
}
