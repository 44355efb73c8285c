package env

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// PathVar overrides the .env location passed to LoadDotEnv.
const PathVar = "ENV_PATH"

// LoadDotEnv loads variables from a .env file without overriding ones already
// set. A missing file is an error only when env is "local" or empty.
func LoadDotEnv(env string, defaultPath string) error {
	envPath := os.Getenv(PathVar)
	if envPath == "" {
		slog.Debug("ENV_PATH is not set, using default path", "defaultPath", defaultPath)
		envPath = defaultPath
	}

	if err := godotenv.Load(envPath); err != nil {
		if env == "local" || env == "" {
			return err
		}
		slog.Debug("Skipping .env", "path", envPath, "env", env)
	}
	return nil
}

// GetOr returns the value of key, or fallback when it is unset or empty.
func GetOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
