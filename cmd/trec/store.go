package main

import (
	"context"

	"github.com/DjordjeVuckovic/trec-hunter/internal/storage/pg"
)

// openStore connects to the result store or exits. The caller closes the
// returned pool.
func openStore(ctx context.Context, dsn string) (*pg.Storer, *pg.ConnectionPool) {
	connPool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: dsn})
	if err != nil {
		fail("Failed to connect to result store", err)
	}
	return pg.NewStorer(connPool), connPool
}
