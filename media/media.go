// Package media holds the value types shared by the diarization,
// transcription and transcript packages.
package media

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// UnknownSpeaker labels the fallback segment produced when diarization is
// unavailable.
const UnknownSpeaker = "UNKNOWN"

// Clip is a stored audio recording. Path is a local file readable by the
// audio tools; Duration is zero when unknown.
type Clip struct {
	ID       string
	Path     string
	Duration float64
}

// TimeRange is a span in seconds with Start <= End.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewTimeRange returns a range, swapping the bounds if they are reversed.
func NewTimeRange(start, end float64) TimeRange {
	if end < start {
		start, end = end, start
	}
	return TimeRange{Start: start, End: end}
}

// Duration returns End - Start.
func (r TimeRange) Duration() float64 { return r.End - r.Start }

// Offset shifts both bounds by d.
func (r TimeRange) Offset(d float64) TimeRange {
	return TimeRange{Start: r.Start + d, End: r.End + d}
}

// IsZero reports whether r is the (0,0) "whole clip, duration unknown" range.
func (r TimeRange) IsZero() bool { return r.Start == 0 && r.End == 0 }

func (r TimeRange) String() string {
	return fmt.Sprintf("[%.3f, %.3f]", r.Start, r.End)
}

// Segment is a span of a clip attributed to one speaker. Speaker labels are
// local to the chunk that produced them.
type Segment struct {
	ID           string  `json:"id"`
	AudioClipID  string  `json:"audio_clip_id"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	SpeakerLabel string  `json:"speaker_label"`
	Text         string  `json:"text"`
}

// NewSegment creates an untranscribed segment with a fresh id.
func NewSegment(clipID string, r TimeRange, speaker string) Segment {
	return Segment{
		ID:           uuid.NewString(),
		AudioClipID:  clipID,
		Start:        r.Start,
		End:          r.End,
		SpeakerLabel: speaker,
	}
}

// FallbackSegment is the single UNKNOWN segment covering the whole clip.
func FallbackSegment(clipID string) Segment {
	return NewSegment(clipID, TimeRange{}, UnknownSpeaker)
}

// Range returns the segment's time range.
func (s Segment) Range() TimeRange { return TimeRange{Start: s.Start, End: s.End} }

// WithText returns a copy of s carrying text.
func (s Segment) WithText(text string) Segment {
	s.Text = text
	return s
}

// SortByStart orders segments by start, keeping the relative order of equal
// starts.
func SortByStart(segs []Segment) {
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
}

// Transcript is the ordered, persisted result for one clip.
type Transcript struct {
	ClipID    string    `json:"clip_id"`
	Segments  []Segment `json:"segments"`
	CreatedAt time.Time `json:"created_at"`
}
