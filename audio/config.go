package audio

import (
	"fmt"
	"time"
)

// Config configures the ffmpeg-based audio tools.
type Config struct {
	FFmpegPath  string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path" mapstructure:"ffprobe_path"`
	// TempDir holds extracted chunk files. Empty uses the OS default.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
	// Timeout bounds a single ffmpeg or ffprobe invocation. Zero disables it.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	MinSilenceDuration time.Duration `yaml:"min_silence_duration" mapstructure:"min_silence_duration"`
	SilenceThresholdDB float64       `yaml:"silence_threshold_db" mapstructure:"silence_threshold_db"`
	// MinChunkDuration is in seconds.
	MinChunkDuration float64 `yaml:"min_chunk_duration" mapstructure:"min_chunk_duration"`
}

// ApplyDefaults sets ffmpeg binaries and the silence detection defaults.
func (c *Config) ApplyDefaults() {
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.MinSilenceDuration <= 0 {
		c.MinSilenceDuration = 600 * time.Millisecond
	}
	if c.SilenceThresholdDB == 0 {
		c.SilenceThresholdDB = -40
	}
	if c.MinChunkDuration <= 0 {
		c.MinChunkDuration = 0.5
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SilenceThresholdDB > 0 {
		return fmt.Errorf("audio: silence_threshold_db must be <= 0, got %v", c.SilenceThresholdDB)
	}
	if c.MinChunkDuration < 0 {
		return fmt.Errorf("audio: min_chunk_duration must be >= 0")
	}
	return nil
}

// DetectOptions returns the silence detection options of c.
func (c *Config) DetectOptions() DetectOptions {
	return DetectOptions{
		MinSilence:  c.MinSilenceDuration,
		ThresholdDB: c.SilenceThresholdDB,
		MinChunk:    c.MinChunkDuration,
	}
}
