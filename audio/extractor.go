package audio

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/process"
)

// RangeExtractor cuts a time range of a clip into a standalone file.
type RangeExtractor interface {
	// Extract writes [r.Start, r.End) of clip to a new file and returns its
	// path and a cleanup func that removes it.
	Extract(ctx context.Context, clip media.Clip, r media.TimeRange) (string, func(), error)
}

// Extractor writes 16kHz mono WAV sub-ranges with ffmpeg.
type Extractor struct {
	runner  process.Runner
	ffmpeg  string
	tempDir string
}

var _ RangeExtractor = (*Extractor)(nil)

// NewExtractor creates an Extractor.
func NewExtractor(runner process.Runner, cfg Config) *Extractor {
	cfg.ApplyDefaults()
	return &Extractor{runner: runner, ffmpeg: cfg.FFmpegPath, tempDir: cfg.TempDir}
}

func (e *Extractor) Extract(ctx context.Context, clip media.Clip, r media.TimeRange) (string, func(), error) {
	f, err := os.CreateTemp(e.tempDir, "scribe-chunk-*.wav")
	if err != nil {
		return "", nil, fmt.Errorf("create chunk file: %w", err)
	}
	path := f.Name()
	_ = f.Close()
	cleanup := func() { _ = os.Remove(path) }

	_, err = e.runner.Run(ctx, process.Command{
		Binary: e.ffmpeg,
		Args: []string{
			"-hide_banner", "-loglevel", "error", "-y",
			"-i", clip.Path,
			"-ss", formatSeconds(r.Start),
			"-to", formatSeconds(r.End),
			"-ac", "1", "-ar", "16000", "-f", "wav",
			path,
		},
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("extract %s: %w", r, err)
	}
	return path, cleanup, nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
