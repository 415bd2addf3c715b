package transcription

import (
	"context"
	"time"

	"github.com/kbukum/scribe/provider"
	"github.com/kbukum/scribe/resilience"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider

	// Transcribe returns the text spoken in the audio at req.AudioPath.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}

// ProviderConfig is handed to provider factories.
type ProviderConfig struct {
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Language    string        `yaml:"language" mapstructure:"language"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// Registry builds transcription providers by name.
type Registry = provider.Registry[Provider, ProviderConfig]

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Provider, ProviderConfig]()
}

// Serialize routes every Transcribe call of p through a lane with the given
// number of slots.
func Serialize(p Provider, slots int) Provider {
	return &serialized{
		Provider: p,
		lane:     resilience.NewLane(resilience.LaneConfig{Name: "transcription." + p.Name(), Slots: slots}),
	}
}

type serialized struct {
	Provider
	lane *resilience.Lane
}

func (s *serialized) Transcribe(ctx context.Context, req Request) (*Response, error) {
	return resilience.DoValue(ctx, s.lane, func(ctx context.Context) (*Response, error) {
		return s.Provider.Transcribe(ctx, req)
	})
}
