package config

import (
	"fmt"
	"strings"
	"time"
)

// DatabaseConfig holds the PostgreSQL connection settings for the catalog store.
// Timeout bounds the initial connect-and-ping at bootstrap.
type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !isValidPostgresURL(c.URL) {
		return fmt.Errorf("database URL must start with 'postgres://': %s", c.URL)
	}
	return nil
}

func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}
