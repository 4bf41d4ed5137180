package config

import (
	"fmt"
	"strings"
	"time"
)

// GatewayConfig holds the connection settings for the remote inventory service.
type GatewayConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the gateway configuration.
func (c *GatewayConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Gateway ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.URL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *GatewayConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("gateway URL is not configured")
	}
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("gateway URL must be an http(s) URL: %s", c.URL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid gateway timeout: %v", c.Timeout)
	}
	return nil
}
