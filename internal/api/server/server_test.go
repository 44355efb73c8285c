package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgserver "github.com/DjordjeVuckovic/trec-hunter/pkg/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecks(t *testing.T) {
	tests := []struct {
		name    string
		healthy bool
		want    int
	}{
		{"healthy", true, http.StatusOK},
		{"unhealthy", false, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := pkgserver.HealthCheckerFunc(func(context.Context) bool { return tt.healthy })
			s := New(&Config{Port: "8080", CorsOrigins: []string{"*"}}, hc).
				SetupMiddlewares().
				SetupErrorHandler().
				SetupHealthChecks("/health")

			rec := httptest.NewRecorder()
			s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.True(t, s.probes["/health"])
		})
	}
}

func TestSetupMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	s := New(&Config{Port: "8080"}, pkgserver.NewOkHealthChecker()).SetupMetrics("/metrics", reg)

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_total 1")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("USE_HTTP2", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("RESULT_STORE_DSN", "postgres://localhost/trec")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := configFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.UseHttp2)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CorsOrigins)
	assert.Equal(t, "postgres://localhost/trec", cfg.ResultStoreDSN)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)

	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "")
	cfg, err = configFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.CorsOrigins)
	assert.Equal(t, GracefulShutdownTimeout, cfg.ShutdownTimeout)

	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	_, err = configFromEnv()
	assert.Error(t, err)

	t.Setenv("SHUTDOWN_TIMEOUT", "")
	t.Setenv("PORT", "0")
	_, err = configFromEnv()
	assert.Error(t, err)
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, validatePort("8080"))
	assert.Error(t, validatePort("http"))
	assert.Error(t, validatePort("70000"))
}
