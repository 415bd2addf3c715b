package diarization

import (
	"context"

	"github.com/kbukum/scribe/resilience"
)

// Serialize routes every Diarize call of p through a lane with the given
// number of slots, so a model that is not safe for concurrent inference
// sees at most that many calls at once. Chunk workers beyond the slot
// count queue rather than fail.
func Serialize(p Provider, slots int) Provider {
	return &serialized{
		Provider: p,
		lane:     resilience.NewLane(resilience.LaneConfig{Name: "diarization." + p.Name(), Slots: slots}),
	}
}

type serialized struct {
	Provider
	lane *resilience.Lane
}

func (s *serialized) Diarize(ctx context.Context, req Request) (*Response, error) {
	return resilience.DoValue(ctx, s.lane, func(ctx context.Context) (*Response, error) {
		return s.Provider.Diarize(ctx, req)
	})
}
