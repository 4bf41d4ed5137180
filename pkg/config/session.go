package config

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// SessionConfig holds the settings for browser sessions held by the console.
type SessionConfig struct {
	CookieName string        `koanf:"cookiename"`
	TTL        time.Duration `koanf:"ttl"`
}

const defaultCookieName = "console_session"
const defaultSessionTTL = 30 * time.Minute

// String returns a string representation of the session configuration.
func (c *SessionConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Session ---\n")
	b.WriteString(fmt.Sprintf("  cookiename: %s\n", c.CookieName))
	b.WriteString(fmt.Sprintf("  ttl: %s\n", c.TTL))
	return b.String()
}

func (c *SessionConfig) Validate() error {
	if c.CookieName == "" {
		log.Println("Using default value for session cookiename")
		c.CookieName = defaultCookieName
	}
	if c.TTL <= 0 {
		log.Println("Using default value for session ttl")
		c.TTL = defaultSessionTTL
	}
	return nil
}
