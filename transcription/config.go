package transcription

// Config configures the transcription stage.
type Config struct {
	// Provider selects the registered backend: "whisper" or "openai".
	Provider string `yaml:"provider" mapstructure:"provider" validate:"required"`
	// Lanes is the number of concurrent calls the model accepts.
	Lanes int `yaml:"lanes" mapstructure:"lanes" validate:"gte=0"`

	Sidecar ProviderConfig `yaml:"sidecar" mapstructure:"sidecar"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "whisper"
	}
	if c.Lanes <= 0 {
		c.Lanes = 1
	}
}
