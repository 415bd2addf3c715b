package audio

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/process"
)

const silencedetectOutput = `Input #0, wav, from 'clip.wav':
  Duration: 00:00:12.00, bitrate: 256 kb/s
  Stream #0:0: Audio: pcm_s16le, 16000 Hz, mono, s16, 256 kb/s
[silencedetect @ 0x600000e1c000] silence_start: 4
[silencedetect @ 0x600000e1c000] silence_end: 4.7 | silence_duration: 0.7
[silencedetect @ 0x600000e1c000] silence_start: 8
[silencedetect @ 0x600000e1c000] silence_end: 8.5 | silence_duration: 0.5
size=N/A time=00:00:12.00 bitrate=N/A speed= 800x
`

type fakeRunner struct {
	stdout, stderr string
	err            error
	calls          []process.Command
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) (*process.Result, error) {
	f.calls = append(f.calls, cmd)
	return &process.Result{Stdout: []byte(f.stdout), Stderr: []byte(f.stderr)}, f.err
}

func TestChunksFromSilences(t *testing.T) {
	tests := []struct {
		name     string
		silences []Silence
		duration float64
		minChunk float64
		want     []media.TimeRange
	}{
		{
			name:     "twelve second clip with two pauses",
			silences: []Silence{{4.0, 4.7}, {8.0, 8.5}},
			duration: 12, minChunk: 0.5,
			want: []media.TimeRange{{Start: 0, End: 4.0}, {Start: 4.7, End: 8.0}, {Start: 8.5, End: 12.0}},
		},
		{
			name:     "no silence is one chunk",
			duration: 7.5, minChunk: 0.5,
			want: []media.TimeRange{{Start: 0, End: 7.5}},
		},
		{
			name:     "clip shorter than min chunk",
			duration: 0.3, minChunk: 0.5,
			want: nil,
		},
		{
			name:     "leading and trailing silence trimmed",
			silences: []Silence{{0, 1}, {9, -1}},
			duration: 10, minChunk: 0.5,
			want: []media.TimeRange{{Start: 1, End: 9}},
		},
		{
			name:     "short speech between pauses dropped",
			silences: []Silence{{2, 3}, {3.2, 5}},
			duration: 6, minChunk: 0.5,
			want: []media.TimeRange{{Start: 0, End: 2}, {Start: 5, End: 6}},
		},
		{
			name:     "unsorted input",
			silences: []Silence{{8.0, 8.5}, {4.0, 4.7}},
			duration: 12, minChunk: 0.5,
			want: []media.TimeRange{{Start: 0, End: 4.0}, {Start: 4.7, End: 8.0}, {Start: 8.5, End: 12.0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunksFromSilences(tt.silences, tt.duration, tt.minChunk)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunksFromSilencesInvariants(t *testing.T) {
	silences := []Silence{{0.2, 0.4}, {1.0, 1.1}, {1.3, 2.9}, {3.0, 3.05}, {5.5, 7.0}, {6.5, 8.0}, {9.7, -1}}
	duration, minChunk := 10.0, 0.5

	chunks := ChunksFromSilences(silences, duration, minChunk)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if c.Start < 0 || c.End > duration {
			t.Errorf("chunk %v outside [0, %v]", c, duration)
		}
		if c.Duration() < minChunk {
			t.Errorf("chunk %v shorter than %v", c, minChunk)
		}
		if i > 0 && c.Start < chunks[i-1].End {
			t.Errorf("chunk %v overlaps %v", c, chunks[i-1])
		}
	}
}

func TestParseSilences(t *testing.T) {
	got := ParseSilences(silencedetectOutput + "[silencedetect @ 0x1] silence_start: 11.2\n")
	want := []Silence{{4, 4.7}, {8, 8.5}, {11.2, -1}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("silence %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseDuration(t *testing.T) {
	d, ok := ParseDuration("  Duration: 01:02:03.50, start: 0.000000")
	if !ok || d != 3723.5 {
		t.Errorf("got %v, %v", d, ok)
	}
	if _, ok := ParseDuration("no banner"); ok {
		t.Error("expected no duration")
	}
}

func TestDetector(t *testing.T) {
	runner := &fakeRunner{stderr: silencedetectOutput}
	d := NewDetector(runner, Config{})

	chunks, err := d.Detect(context.Background(), media.Clip{ID: "c1", Path: "/tmp/clip.wav"})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 || chunks[1] != (media.TimeRange{Start: 4.7, End: 8.0}) {
		t.Errorf("unexpected chunks %v", chunks)
	}

	args := strings.Join(runner.calls[0].Args, " ")
	if runner.calls[0].Binary != "ffmpeg" || !strings.Contains(args, "silencedetect=noise=-40dB:d=0.6") {
		t.Errorf("unexpected command %s %s", runner.calls[0].Binary, args)
	}
}

func TestDetectorUsesKnownDuration(t *testing.T) {
	runner := &fakeRunner{stderr: "[silencedetect @ 0x1] silence_start: 2\n[silencedetect @ 0x1] silence_end: 3 | silence_duration: 1\n"}
	d := NewDetector(runner, Config{})

	chunks, err := d.Detect(context.Background(), media.Clip{ID: "c1", Path: "x.wav", Duration: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 || chunks[1].End != 5 {
		t.Errorf("unexpected chunks %v", chunks)
	}
}

func TestExtractor(t *testing.T) {
	runner := &fakeRunner{}
	e := NewExtractor(runner, Config{TempDir: t.TempDir()})

	path, cleanup, err := e.Extract(context.Background(), media.Clip{Path: "in.wav"}, media.TimeRange{Start: 4.7, End: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("chunk file missing: %v", err)
	}
	args := strings.Join(runner.calls[0].Args, " ")
	if !strings.Contains(args, "-ss 4.700 -to 8.000 -ac 1 -ar 16000") {
		t.Errorf("unexpected args %s", args)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("cleanup should remove %s", path)
	}
}

func TestProber(t *testing.T) {
	runner := &fakeRunner{stdout: `{"format": {"duration": "12.480000"}}`}
	d, err := NewProber(runner, Config{}).Probe(context.Background(), "clip.wav")
	if err != nil {
		t.Fatal(err)
	}
	if d != 12.48 {
		t.Errorf("duration = %v", d)
	}
}
