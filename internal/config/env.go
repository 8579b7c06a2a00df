package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted when the config file leaves a value empty.
const (
	EnvToken    = "NOTION_TOKEN"
	EnvRootPage = "DOCNOTION_ROOT_PAGE"
	EnvLogLevel = "DOCNOTION_LOG_LEVEL"
)

// loadEnvFiles loads .env/.env.local without overriding the process environment.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", "path", name, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", name)
	}
}

func applyEnv(cfg *Config) {
	if cfg.Notion.Token == "" {
		cfg.Notion.Token = os.Getenv(EnvToken)
	}
	if cfg.Notion.RootPage == "" {
		cfg.Notion.RootPage = os.Getenv(EnvRootPage)
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" && cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevel(lvl)
	}
}
