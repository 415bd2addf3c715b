package audio

import (
	"sort"

	"github.com/kbukum/scribe/media"
)

// Silence is a detected silent span in seconds. End is negative when the
// silence ran to the end of the file without a reported end.
type Silence struct {
	Start float64
	End   float64
}

// ChunksFromSilences returns the non-silent spans of a clip of the given
// duration, keeping only spans of at least minChunk seconds. Without any
// silence the whole clip is one chunk; a clip shorter than minChunk yields
// no chunks.
func ChunksFromSilences(silences []Silence, duration, minChunk float64) []media.TimeRange {
	sorted := make([]Silence, len(silences))
	copy(sorted, silences)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var chunks []media.TimeRange
	add := func(start, end float64) {
		if end > start && end-start >= minChunk {
			chunks = append(chunks, media.TimeRange{Start: start, End: end})
		}
	}

	prevEnd := 0.0
	for _, s := range sorted {
		start := clamp(s.Start, 0, duration)
		end := s.End
		if end < 0 {
			end = duration
		}
		end = clamp(end, start, duration)

		if prevEnd < start {
			add(prevEnd, start)
		}
		if end > prevEnd {
			prevEnd = end
		}
	}
	if prevEnd < duration {
		add(prevEnd, duration)
	}
	return chunks
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
