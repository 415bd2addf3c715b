package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kbukum/scribe/process"
)

// DurationProber reports the duration of an audio file in seconds.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// Prober reads durations with ffprobe.
type Prober struct {
	runner  process.Runner
	ffprobe string
}

var _ DurationProber = (*Prober)(nil)

// NewProber creates a Prober.
func NewProber(runner process.Runner, cfg Config) *Prober {
	cfg.ApplyDefaults()
	return &Prober{runner: runner, ffprobe: cfg.FFprobePath}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *Prober) Probe(ctx context.Context, path string) (float64, error) {
	res, err := p.runner.Run(ctx, process.Command{
		Binary: p.ffprobe,
		Args:   []string{"-v", "error", "-show_entries", "format=duration", "-of", "json", path},
	})
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}

	var out probeOutput
	if err := json.Unmarshal(res.Stdout, &out); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	d, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
	}
	return d, nil
}
