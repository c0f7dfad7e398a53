package env

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file. ENV_PATH
// overrides the default path; a missing file is only an error when the
// variables are required by the caller, so it is logged and skipped here.
func LoadDotEnv(defaultPath string) {
	envPath := defaultPath
	if p := os.Getenv("ENV_PATH"); p != "" {
		envPath = p
	}

	if err := godotenv.Load(envPath); err != nil {
		slog.Debug("skipping .env", "path", envPath, "error", err)
	}
}
