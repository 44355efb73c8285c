package engine

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/spec"
)

const (
	EnvEsAddresses = "ES_ADDRESSES"
	EnvEsUsername  = "ES_USERNAME"
	EnvEsPassword  = "ES_PASSWORD"
	EnvPgConnStr   = "PG_CONNECTION_STRING"
)

// ApplyEnv fills connection settings an engine definition leaves empty from
// the environment. Credentials set in the definition are kept.
func ApplyEnv(engines map[string]spec.Engine) (map[string]spec.Engine, error) {
	out := make(map[string]spec.Engine, len(engines))
	for name, eng := range engines {
		switch eng.Type {
		case spec.EngineElasticsearch:
			if eng.Connection == "" {
				eng.Connection = os.Getenv(EnvEsAddresses)
			}
			if eng.Username == "" && eng.Password == "" {
				eng.Username = os.Getenv(EnvEsUsername)
				eng.Password = os.Getenv(EnvEsPassword)
			}
		case spec.EnginePostgres:
			if eng.Connection == "" {
				eng.Connection = os.Getenv(EnvPgConnStr)
			}
		}
		if eng.Connection == "" {
			slog.Error("Engine configuration is incomplete", "engine", name, "type", eng.Type)
			return nil, fmt.Errorf("engine %q has no connection and none is set in the environment", name)
		}
		out[name] = eng
	}
	return out, nil
}
