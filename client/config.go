package client

import (
	"os"
	"strings"
	"time"
)

const (
	// EnvBaseURL overrides the API base URL.
	EnvBaseURL     = "PORTFOLIO_API_URL"
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 10 * time.Second
)

// Config holds the transport settings of a Client.
type Config struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
}

// DefaultConfig reads the base URL from the environment, falling back to
// DefaultBaseURL.
func DefaultConfig() Config {
	return Config{
		BaseURL:   BaseURLFromEnv(),
		Timeout:   DefaultTimeout,
		UserAgent: "go-portfolio-client",
	}
}

// BaseURLFromEnv reads PORTFOLIO_API_URL, falling back to DefaultBaseURL.
func BaseURLFromEnv() string {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		return v
	}
	return DefaultBaseURL
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = BaseURLFromEnv()
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}
