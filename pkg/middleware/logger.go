package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type LoggerOpts func(*middleware.RequestLoggerConfig)

// WithSkipper leaves requests matched by skip unlogged, e.g. health probes.
func WithSkipper(skip middleware.Skipper) LoggerOpts {
	return func(c *middleware.RequestLoggerConfig) {
		c.Skipper = skip
	}
}

// Logger writes one slog record per request.
func Logger(opts ...LoggerOpts) echo.MiddlewareFunc {
	o := defaultOpt()
	for _, opt := range opts {
		opt(&o)
	}

	return middleware.RequestLoggerWithConfig(o)
}

func defaultOpt() middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error == nil {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "REQUEST", attrs...)
				return nil
			}
			attrs = append(attrs, slog.String("err", v.Error.Error()))
			slog.LogAttrs(c.Request().Context(), slog.LevelError, "REQUEST_ERROR", attrs...)
			return nil
		},
	}
}
