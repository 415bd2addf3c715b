package auth

import (
	"fmt"
	"time"
)

// Config holds authentication configuration.
type Config struct {
	// Enabled controls whether the API requires a bearer token.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Secret is the HMAC key for HS256 tokens.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Issuer is required on incoming tokens when set.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// TokenTTL bounds tokens issued by Issue.
	TokenTTL time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
	// SkipPaths are served without authentication.
	SkipPaths []string `yaml:"skip_paths" mapstructure:"skip_paths"`
}

// ApplyDefaults sets sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.TokenTTL == 0 {
		c.TokenTTL = time.Hour
	}
	if c.SkipPaths == nil {
		c.SkipPaths = []string{"/health", "/ready"}
	}
}

// Validate checks the configuration. A disabled config is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("auth.secret must be at least 16 bytes")
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("auth.token_ttl must be non-negative (got: %s)", c.TokenTTL)
	}
	return nil
}

// Describe returns a one-liner for the startup summary.
func (c *Config) Describe() string {
	if !c.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("JWT(HS256) issuer=%q", c.Issuer)
}
