package server

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/trec-hunter/pkg/config/env"
	"github.com/DjordjeVuckovic/trec-hunter/pkg/utils"
)

const DefaultEnvPath = "cmd/trec/.env"

type Config struct {
	Port        string
	UseHttp2    bool
	CorsOrigins []string
	// ResultStoreDSN enables persisting evaluations when set.
	ResultStoreDSN  string
	ShutdownTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	if err := env.LoadDotEnv(os.Getenv("APP_ENV"), DefaultEnvPath); err != nil {
		slog.Info("Skipping .env ...", "error", err)
	}
	return configFromEnv()
}

func configFromEnv() (*Config, error) {
	port := env.GetOr("PORT", "8080")
	if err := validatePort(port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	shutdownTimeout := GracefulShutdownTimeout
	if raw := os.Getenv("SHUTDOWN_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q", raw)
		}
		shutdownTimeout = d
	}

	origins := utils.SplitTrim(os.Getenv("CORS_ORIGINS"), ",")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Config{
		Port:            port,
		UseHttp2:        os.Getenv("USE_HTTP2") == "true",
		CorsOrigins:     origins,
		ResultStoreDSN:  os.Getenv("RESULT_STORE_DSN"),
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)

	if err != nil {
		return errors.New("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	return nil
}
