package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Journal Configuration

[database]
# Record store: "sqlite" or "mongo"
driver = "sqlite"
# SQLite database file (defaults to journal.db in the config directory)
# path = "/path/to/journal.db"
# MongoDB connection, used when driver = "mongo"
mongo_uri = ""
mongo_database = "trade-journal"

[server]
address = "127.0.0.1:8080"
read_timeout = "15s"
write_timeout = "30s"
# HMAC secret for bearer tokens; required by "serve" (or set TJ_JWT_SECRET)
jwt_secret = ""
allowed_origins = ["*"]
# Per-user token bucket; rate_limit = 0 disables it
rate_limit = 20.0
rate_burst = 40

[cache]
# How long a user's strategy list is served from memory
strategy_ttl = "5m"
strategy_capacity = 1024

[analytics]
# Timezone for month and calendar-day buckets
timezone = "UTC"

[logging]
# debug, info, warn, error
level = "info"
console = true
file = true
max_size = 100
max_backups = 7
max_age = 30
`

// createTemplateConfig writes the config template if no file exists yet.
func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
