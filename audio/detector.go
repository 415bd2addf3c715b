// Package audio wraps ffmpeg and ffprobe: silence-based chunk detection,
// sub-range extraction and duration probing.
package audio

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/process"
)

// DetectOptions configures chunk detection.
type DetectOptions struct {
	MinSilence  time.Duration
	ThresholdDB float64
	// MinChunk is the shortest chunk kept, in seconds.
	MinChunk float64
}

// ChunkDetector splits a clip into speech chunks.
type ChunkDetector interface {
	Detect(ctx context.Context, clip media.Clip) ([]media.TimeRange, error)
}

// Detector finds chunks with ffmpeg's silencedetect filter.
type Detector struct {
	runner process.Runner
	ffmpeg string
	opts   DetectOptions
	log    *logger.Logger
}

var _ ChunkDetector = (*Detector)(nil)

// NewDetector creates a Detector.
func NewDetector(runner process.Runner, cfg Config) *Detector {
	cfg.ApplyDefaults()
	return &Detector{
		runner: runner,
		ffmpeg: cfg.FFmpegPath,
		opts:   cfg.DetectOptions(),
		log:    logger.WithComponent("audio.detector"),
	}
}

// Detect returns the ordered, non-overlapping speech chunks of clip. When
// the clip carries no duration, the one ffmpeg reports is used.
func (d *Detector) Detect(ctx context.Context, clip media.Clip) ([]media.TimeRange, error) {
	filter := fmt.Sprintf("silencedetect=noise=%sdB:d=%s",
		strconv.FormatFloat(d.opts.ThresholdDB, 'f', -1, 64),
		strconv.FormatFloat(d.opts.MinSilence.Seconds(), 'f', -1, 64))

	res, err := d.runner.Run(ctx, process.Command{
		Binary: d.ffmpeg,
		Args:   []string{"-hide_banner", "-nostats", "-i", clip.Path, "-af", filter, "-f", "null", "-"},
	})
	if err != nil {
		return nil, fmt.Errorf("detect silence: %w", err)
	}

	out := string(res.Stderr)
	duration := clip.Duration
	if duration <= 0 {
		var ok bool
		if duration, ok = ParseDuration(out); !ok {
			return nil, fmt.Errorf("detect silence: no duration for clip %s", clip.ID)
		}
	}

	silences := ParseSilences(out)
	chunks := ChunksFromSilences(silences, duration, d.opts.MinChunk)
	d.log.Debug("chunks detected", logger.Fields(
		logger.FieldClipID, clip.ID,
		"silences", len(silences),
		"chunks", len(chunks),
		"duration", duration,
	))
	return chunks, nil
}
