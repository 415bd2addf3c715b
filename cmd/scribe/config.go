package main

import (
	"fmt"

	"github.com/kbukum/scribe/audio"
	"github.com/kbukum/scribe/auth"
	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/diarization"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/redis"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/transcription"
)

// Transcript store backends.
const (
	BackendDatabase = "database"
	BackendRedis    = "redis"
)

// TranscriptsConfig selects where transcripts are kept.
type TranscriptsConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend" validate:"omitempty,oneof=database redis"`
}

// Config is the full service configuration.
type Config struct {
	config.ServiceConfig `mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Audio         audio.Config         `yaml:"audio" mapstructure:"audio"`
	Diarization   diarization.Config   `yaml:"diarization" mapstructure:"diarization"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	Transcripts   TranscriptsConfig    `yaml:"transcripts" mapstructure:"transcripts"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Audio.ApplyDefaults()
	c.Diarization.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.Transcripts.Backend == "" {
		c.Transcripts.Backend = BackendDatabase
	}
}

// Validate checks struct tags, then each section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := config.ValidateStruct(c); err != nil {
		return err
	}
	checks := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Validate},
		{"database", c.Database.Validate},
		{"storage", c.Storage.Validate},
		{"audio", c.Audio.Validate},
		{"diarization", c.Diarization.Validate},
		{"auth", c.Auth.Validate},
		{"observability", c.Observability.Validate},
	}
	if c.Transcripts.Backend == BackendRedis {
		checks = append(checks, struct {
			name string
			fn   func() error
		}{"redis", c.Redis.Validate})
	}
	for _, check := range checks {
		if err := check.fn(); err != nil {
			return fmt.Errorf("%s: %w", check.name, err)
		}
	}
	return nil
}
