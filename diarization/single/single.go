// Package single is a diarization provider without a model: every input is
// one turn by one speaker. It keeps the pipeline usable where no diarization
// sidecar is deployed.
package single

import (
	"context"
	"fmt"

	"github.com/kbukum/scribe/audio"
	"github.com/kbukum/scribe/diarization"
)

const (
	// ProviderName is the registered name for this provider.
	ProviderName = "single"
	// Speaker is the label given to every turn.
	Speaker = "SPEAKER_00"
)

// Provider reports the whole input as a single turn.
type Provider struct {
	prober audio.DurationProber
}

var _ diarization.Provider = (*Provider)(nil)

// NewProvider creates the provider. prober measures each input's length.
func NewProvider(prober audio.DurationProber) *Provider {
	return &Provider{prober: prober}
}

// Factory returns a registry factory bound to prober.
func Factory(prober audio.DurationProber) func(diarization.ProviderConfig) (diarization.Provider, error) {
	return func(diarization.ProviderConfig) (diarization.Provider, error) {
		return NewProvider(prober), nil
	}
}

func (p *Provider) Name() string                     { return ProviderName }
func (p *Provider) IsAvailable(context.Context) bool { return true }

func (p *Provider) Diarize(ctx context.Context, req diarization.Request) (*diarization.Response, error) {
	d, err := p.prober.Probe(ctx, req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("single: %w", err)
	}
	return &diarization.Response{
		Turns:       []diarization.Turn{{Speaker: Speaker, Start: 0, End: d}},
		NumSpeakers: 1,
	}, nil
}
