package config

import (
	"fmt"
	"strings"
)

// LogConfig controls the verbosity of the catalog's structured logger.
type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Log ---\n")
	b.WriteString(fmt.Sprintf("  level: %s\n", c.Level))
	return b.String()
}

// Validate accepts any level string; unknown values fall back to info at bootstrap.
func (c *LogConfig) Validate() error {
	return nil
}
