package diarization

import "fmt"

const defaultMaxConcurrency = 3

// Config configures the diarization stage.
type Config struct {
	// Provider selects the registered backend: "pyannote" or "single".
	Provider string `yaml:"provider" mapstructure:"provider" validate:"required"`
	// MaxConcurrency bounds the chunks diarized at once and is the batch size.
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency" validate:"gte=0"`
	// Lanes is the number of concurrent calls the model accepts.
	Lanes int `yaml:"lanes" mapstructure:"lanes" validate:"gte=0"`

	NumSpeakers int `yaml:"num_speakers" mapstructure:"num_speakers"`
	MinSpeakers int `yaml:"min_speakers" mapstructure:"min_speakers"`
	MaxSpeakers int `yaml:"max_speakers" mapstructure:"max_speakers"`

	Sidecar ProviderConfig `yaml:"sidecar" mapstructure:"sidecar"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "pyannote"
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = defaultMaxConcurrency
	}
	if c.Lanes <= 0 {
		c.Lanes = 1
	}
}

// Validate checks speaker hints for consistency.
func (c *Config) Validate() error {
	if c.MinSpeakers > 0 && c.MaxSpeakers > 0 && c.MinSpeakers > c.MaxSpeakers {
		return fmt.Errorf("diarization: min_speakers %d > max_speakers %d", c.MinSpeakers, c.MaxSpeakers)
	}
	return nil
}
