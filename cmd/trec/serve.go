package main

import (
	"log/slog"
	"net/http"

	"github.com/DjordjeVuckovic/trec-hunter/internal/api/router"
	apiserver "github.com/DjordjeVuckovic/trec-hunter/internal/api/server"
	"github.com/DjordjeVuckovic/trec-hunter/internal/api/telemetry"
	"github.com/DjordjeVuckovic/trec-hunter/internal/storage/pg"
	pkgserver "github.com/DjordjeVuckovic/trec-hunter/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	_ "github.com/DjordjeVuckovic/trec-hunter/docs"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the evaluation HTTP API",
		Long: `Start the HTTP API. Settings come from the environment (or cmd/trec/.env):
PORT, USE_HTTP2, CORS_ORIGINS, SHUTDOWN_TIMEOUT and RESULT_STORE_DSN.`,
		Run: func(cmd *cobra.Command, args []string) {
			sCfg, err := apiserver.LoadConfig()
			if err != nil {
				fail("Failed to load config", err)
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := telemetry.NewMetrics()
			if err := m.Register(reg); err != nil {
				fail("Failed to register metrics", err)
			}

			var (
				healthChecker pkgserver.HealthChecker = pkgserver.NewOkHealthChecker()
				routerOpts    []router.EvalRouterOption
			)
			if sCfg.ResultStoreDSN != "" {
				store, connPool := openStore(cmd.Context(), sCfg.ResultStoreDSN)
				defer connPool.Close()
				healthChecker = pg.NewHealthChecker(connPool)
				routerOpts = append(routerOpts, router.WithResultStore(store))
				slog.Info("Result store enabled")
			} else {
				slog.Info("Result store disabled")
			}

			s := apiserver.New(sCfg, healthChecker).
				SetupMiddlewares().
				SetupErrorHandler().
				SetupHealthChecks("/health").
				SetupOpenApi("/swagger/*").
				SetupMetrics("/metrics", reg)

			s.Echo.GET("/", func(c echo.Context) error {
				return c.String(http.StatusOK, "TREC Hunter API is running")
			})

			router.NewEvalRouter(s.Echo, m, routerOpts...).Bind()

			go func() {
				<-s.ShutdownSignal()
				slog.Info("Shutdown started, cleaning up resources...")
			}()

			if err := s.Start(); err != nil {
				fail("Failed to start server", err)
			}
		},
	}
}
