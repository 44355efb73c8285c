package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/metrics"
	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/pool"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// StoredReport is a saved set of metric relations.
type StoredReport struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	Relations []*metrics.Relation
}

// Storer persists metric relations and pools.
type Storer struct {
	db *pgxpool.Pool
}

func NewStorer(pool *ConnectionPool) *Storer {
	return &Storer{db: pool.conn}
}

// SaveRelations stores relations under a new report id. Rows keep their
// relation order so LoadRelations returns them as written.
func (s *Storer) SaveRelations(ctx context.Context, name string, relations []*metrics.Relation) (uuid.UUID, error) {
	id := uuid.New()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO eval_reports (id, name, created_at) VALUES ($1, $2, $3)`,
		id, name, time.Now().UTC(),
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert report: %w", err)
	}

	var rows [][]any
	for _, rel := range relations {
		for i, row := range rel.Rows {
			rows = append(rows, []any{id, rel.RunID, row.Metric, row.Query, row.Value, i})
		}
	}

	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"eval_results"},
		[]string{"report_id", "runid", "metric", "query", "value", "position"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to bulk insert results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit report: %w", err)
	}
	return id, nil
}

// LoadRelations returns the relations of a report ordered by run id.
func (s *Storer) LoadRelations(ctx context.Context, id uuid.UUID) (*StoredReport, error) {
	report := &StoredReport{ID: id}
	err := s.db.QueryRow(ctx,
		`SELECT name, created_at FROM eval_reports WHERE id = $1`, id,
	).Scan(&report.Name, &report.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT runid, metric, query, value
		FROM eval_results
		WHERE report_id = $1
		ORDER BY runid, position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	defer rows.Close()

	byRun := make(map[string]*metrics.Relation)
	for rows.Next() {
		var runID, metric, query string
		var value float64
		if err := rows.Scan(&runID, &metric, &query, &value); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		rel, ok := byRun[runID]
		if !ok {
			rel = metrics.NewRelation(runID)
			byRun[runID] = rel
			report.Relations = append(report.Relations, rel)
		}
		rel.Add(metric, query, value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Storer) SavePool(ctx context.Context, pf *pool.PoolFile) (uuid.UUID, error) {
	id := uuid.New()

	strategy, err := json.Marshal(pf.Strategy)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal strategy: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO pools (id, name, strategy) VALUES ($1, $2, $3)`,
		id, pf.Name, strategy,
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert pool: %w", err)
	}

	var rows [][]any
	for _, entry := range pf.Queries {
		for i, d := range entry.Docs {
			sources := d.Sources
			if sources == nil {
				sources = []string{}
			}
			rows = append(rows, []any{id, entry.QueryID, d.DocID, sources, i})
		}
	}

	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"pool_docs"},
		[]string{"pool_id", "query", "docid", "sources", "position"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to bulk insert pool docs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit pool: %w", err)
	}
	return id, nil
}

func (s *Storer) LoadPool(ctx context.Context, id uuid.UUID) (*pool.PoolFile, error) {
	pf := &pool.PoolFile{}
	var strategy []byte
	err := s.db.QueryRow(ctx, `SELECT name, strategy FROM pools WHERE id = $1`, id).Scan(&pf.Name, &strategy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("pool %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pool: %w", err)
	}
	if err := json.Unmarshal(strategy, &pf.Strategy); err != nil {
		return nil, fmt.Errorf("failed to parse strategy: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT query, docid, sources
		FROM pool_docs
		WHERE pool_id = $1
		ORDER BY query, position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool docs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var query string
		var doc pool.PooledDoc
		if err := rows.Scan(&query, &doc.DocID, &doc.Sources); err != nil {
			return nil, fmt.Errorf("failed to scan pool doc: %w", err)
		}
		if n := len(pf.Queries); n == 0 || pf.Queries[n-1].QueryID != query {
			pf.Queries = append(pf.Queries, pool.PoolEntry{QueryID: query})
		}
		last := &pf.Queries[len(pf.Queries)-1]
		last.Docs = append(last.Docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pf, nil
}
