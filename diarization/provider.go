package diarization

import (
	"context"
	"time"

	"github.com/kbukum/scribe/provider"
)

// Provider is the interface that diarization backends must implement.
type Provider interface {
	provider.Provider

	// Diarize returns the speaker turns of the audio at req.AudioPath.
	Diarize(ctx context.Context, req Request) (*Response, error)
}

// ProviderConfig is handed to provider factories.
type ProviderConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	// MaxAttempts bounds retries of transient sidecar failures.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// Registry builds diarization providers by name.
type Registry = provider.Registry[Provider, ProviderConfig]

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Provider, ProviderConfig]()
}
