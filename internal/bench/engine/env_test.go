package engine

import (
	"testing"

	"github.com/DjordjeVuckovic/trec-hunter/internal/bench/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvEsAddresses, "http://es:9200")
	t.Setenv(EnvEsUsername, "elastic")
	t.Setenv(EnvEsPassword, "secret")
	t.Setenv(EnvPgConnStr, "postgres://localhost/runs")

	got, err := ApplyEnv(map[string]spec.Engine{
		"es":       {Type: spec.EngineElasticsearch},
		"es-auth":  {Type: spec.EngineElasticsearch, Connection: "http://other:9200", Username: "u", Password: "p"},
		"pg":       {Type: spec.EnginePostgres},
		"pg-fixed": {Type: spec.EnginePostgres, Connection: "postgres://fixed/db"},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://es:9200", got["es"].Connection)
	assert.Equal(t, "elastic", got["es"].Username)
	assert.Equal(t, "secret", got["es"].Password)
	assert.Equal(t, "http://other:9200", got["es-auth"].Connection)
	assert.Equal(t, "u", got["es-auth"].Username)
	assert.Equal(t, "postgres://localhost/runs", got["pg"].Connection)
	assert.Equal(t, "postgres://fixed/db", got["pg-fixed"].Connection)
}

func TestApplyEnvMissingConnection(t *testing.T) {
	t.Setenv(EnvPgConnStr, "")

	_, err := ApplyEnv(map[string]spec.Engine{"api": {Type: spec.EngineAPI}})
	assert.ErrorContains(t, err, `engine "api" has no connection`)

	_, err = ApplyEnv(map[string]spec.Engine{"pg": {Type: spec.EnginePostgres}})
	assert.Error(t, err)
}
