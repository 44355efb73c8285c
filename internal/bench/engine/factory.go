package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/spec"
	"github.com/DjordjeVuckovic/trec-hunter/internal/storage/pg"
	"github.com/DjordjeVuckovic/trec-hunter/pkg/utils"
)

// CreateFromSpec opens one executor per configured engine. The returned
// cleanup closes every connection pool opened so far.
func CreateFromSpec(ctx context.Context, engines map[string]spec.Engine) (map[string]Executor, func(), error) {
	executors := make(map[string]Executor, len(engines))
	var cleanups []func()

	cleanup := func() {
		for _, c := range cleanups {
			c()
		}
	}

	for name, eng := range engines {
		switch eng.Type {
		case spec.EnginePostgres:
			pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: eng.Connection})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("create pg pool for %q: %w", name, err)
			}
			cleanups = append(cleanups, pool.Close)
			executors[name] = NewPgExecutor(name, pool)

		case spec.EngineElasticsearch:
			exec, err := NewEsExecutor(name, EsConfig{
				Addresses: splitAddresses(eng.Connection),
				Username:  eng.Username,
				Password:  eng.Password,
				Index:     eng.Index,
				IDField:   eng.IDField,
				Fields:    eng.Fields,
			})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("create es client for %q: %w", name, err)
			}
			executors[name] = exec

		case spec.EngineAPI:
			executors[name] = NewAPIExecutor(name, strings.TrimRight(eng.Connection, "/"))

		default:
			cleanup()
			return nil, nil, fmt.Errorf("unsupported engine type %q for %q", eng.Type, name)
		}
	}

	return executors, cleanup, nil
}

func splitAddresses(conn string) []string {
	return utils.SplitTrim(conn, ",")
}
