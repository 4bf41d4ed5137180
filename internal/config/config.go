package config

import (
	"fmt"
	"strings"

	"github.com/ankit-modi39/fi-inventory-management/pkg/config"
	"github.com/ankit-modi39/fi-inventory-management/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig           `koanf:"server"`
	Gateway    config.GatewayConfig        `koanf:"gateway"`
	Breaker    config.CircuitBreakerConfig `koanf:"circuitbreaker"`
	Session    config.SessionConfig        `koanf:"session"`
	Log        config.LogConfig            `koanf:"log"`
	PProf      config.PProfConfig          `koanf:"pprof"`
	Shutdown   config.ShutdownConfig       `koanf:"shutdown"`
	PageSize   int                         `koanf:"pagesize"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.maxHeaderBytes: %d\n", c.HTTPServer.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readHeader: %v\n", c.HTTPServer.Timeout.ReadHeader))

	b.WriteString("\n--- Inventory Gateway ---\n")
	b.WriteString(fmt.Sprintf("  gateway.url: %s\n", c.Gateway.URL))
	b.WriteString(fmt.Sprintf("  gateway.timeout: %s\n", c.Gateway.Timeout))
	b.WriteString(fmt.Sprintf("  circuitbreaker.consecutivefailures: %d\n", c.Breaker.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  circuitbreaker.errorratepercent: %d\n", c.Breaker.ErrorRatePercent))
	b.WriteString(fmt.Sprintf("  circuitbreaker.opentimeout: %s\n", c.Breaker.OpenTimeout))

	b.WriteString("\n--- Console Behavior ---\n")
	b.WriteString(fmt.Sprintf("  session.cookiename: %s\n", c.Session.CookieName))
	b.WriteString(fmt.Sprintf("  session.ttl: %s\n", c.Session.TTL))
	b.WriteString(fmt.Sprintf("  pagesize: %d\n", c.PageSize))
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Gateway.Validate(); err != nil {
		return err
	}
	if err := c.Breaker.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("pagesize must be greater than 0: %d", c.PageSize)
	}
	return nil
}
