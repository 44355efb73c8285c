package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	mw "github.com/DjordjeVuckovic/trec-hunter/pkg/middleware"
	pkgserver "github.com/DjordjeVuckovic/trec-hunter/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const (
	GracefulShutdownTimeout = 10 * time.Second
)

type Server struct {
	Echo *echo.Echo

	cfg           *Config
	healthChecker pkgserver.HealthChecker
	// probes are routes left out of request logging.
	probes        map[string]bool
	ctx           context.Context
	stop          context.CancelFunc
	shutdown      chan struct{}
}

func New(cfg *Config, hc pkgserver.HealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.DisableHTTP2 = !cfg.UseHttp2

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &Server{
		Echo:          e,
		cfg:           cfg,
		healthChecker: hc,
		probes:        make(map[string]bool),
		ctx:           ctx,
		stop:          stop,
		shutdown:      make(chan struct{}),
	}
}

func (s *Server) SetupMiddlewares() *Server {
	s.Echo.Use(mw.Logger(mw.WithSkipper(func(c echo.Context) bool {
		return s.probes[c.Path()]
	})))
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
	return s
}

func (s *Server) SetupErrorHandler() *Server {
	s.Echo.HTTPErrorHandler = apperr.GlobalErrorHandler()
	return s
}

func (s *Server) SetupHealthChecks(path string) *Server {
	s.probes[path] = true
	s.Echo.GET(path, func(c echo.Context) error {
		if !s.healthChecker.Healthy(c.Request().Context()) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return s
}

func (s *Server) SetupOpenApi(path string) *Server {
	s.Echo.GET(path, echoSwagger.WrapHandler)
	return s
}

// SetupMetrics exposes the collectors of reg in the Prometheus text format.
func (s *Server) SetupMetrics(path string, reg *prometheus.Registry) *Server {
	s.probes[path] = true
	s.Echo.GET(path, echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	return s
}

// Context is cancelled on SIGINT or SIGTERM.
func (s *Server) Context() context.Context {
	return s.ctx
}

// ShutdownSignal is closed once the server has stopped accepting requests.
func (s *Server) ShutdownSignal() <-chan struct{} {
	return s.shutdown
}

func (s *Server) Start() error {
	defer s.stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.Echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		close(s.shutdown)
		return err
	case <-s.ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = GracefulShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.Echo.Shutdown(ctx)
	close(s.shutdown)
	return err
}
