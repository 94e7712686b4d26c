package config

import (
	"fmt"
	"strings"
)

// RetryConfig bounds optimistic-concurrency retry loops.
type RetryConfig struct {
	MaxAttempts int `koanf:"maxattempts"`
}

// String returns a string representation of the RetryConfig.
func (c *RetryConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Retry ---\n")
	b.WriteString(fmt.Sprintf("  maxattempts: %d\n", c.MaxAttempts))
	return b.String()
}

func (c *RetryConfig) Validate() error {
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("retry.maxattempts must be greater than 0")
	}
	return nil
}
