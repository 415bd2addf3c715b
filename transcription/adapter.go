package transcription

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/scribe/audio"
	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/pipeline"
)

// Transcriber converts a span of a clip into text.
type Transcriber interface {
	// Transcribe returns the text of [start, end). Failures yield "".
	Transcribe(ctx context.Context, clip media.Clip, start, end float64) string
	// TranscribeStream yields the text of [start, end) as fragments.
	TranscribeStream(ctx context.Context, clip media.Clip, start, end float64) pipeline.Iterator[string]
}

// Adapter applies the span policy to a Provider: a span covering the whole
// clip, or the (0,0) span, sends the original file; any other span is cut
// into its own file first.
type Adapter struct {
	provider  Provider
	extractor audio.RangeExtractor
	language  string
	metrics   *observability.Metrics
	log       *logger.Logger
}

var _ Transcriber = (*Adapter)(nil)

// NewAdapter creates an Adapter. metrics may be nil.
func NewAdapter(p Provider, extractor audio.RangeExtractor, language string, metrics *observability.Metrics) *Adapter {
	return &Adapter{
		provider:  p,
		extractor: extractor,
		language:  language,
		metrics:   metrics,
		log:       logger.WithComponent("transcription"),
	}
}

// IsWholeClip reports whether [start, end) covers all of clip.
func IsWholeClip(clip media.Clip, start, end float64) bool {
	if start != 0 {
		return false
	}
	return end == 0 || (clip.Duration > 0 && end >= clip.Duration)
}

func (a *Adapter) Transcribe(ctx context.Context, clip media.Clip, start, end float64) string {
	text, err := a.transcribe(ctx, clip, start, end)
	if err != nil {
		a.log.WithContext(ctx).Warn("transcription failed, using empty text", logger.Fields(
			logger.FieldClipID, clip.ID,
			logger.FieldSegment, media.TimeRange{Start: start, End: end}.String(),
			logger.FieldError, err.Error(),
		))
		return ""
	}
	return text
}

// TranscribeStream yields one fragment: the providers are not incremental.
// The call happens on the first Next.
func (a *Adapter) TranscribeStream(ctx context.Context, clip media.Clip, start, end float64) pipeline.Iterator[string] {
	done := false
	return pipeline.Func(func(ctx context.Context) (string, bool, error) {
		if done {
			return "", false, nil
		}
		done = true
		return a.Transcribe(ctx, clip, start, end), true, nil
	}, nil)
}

func (a *Adapter) transcribe(ctx context.Context, clip media.Clip, start, end float64) (text string, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribeSpan,
		attribute.String("clip.id", clip.ID),
		attribute.Float64("span.start", start),
		attribute.Float64("span.end", end),
	)
	began := time.Now()
	defer func() {
		status := observability.StatusOK
		if err != nil {
			status = observability.StatusError
		}
		a.metrics.RecordOperation(ctx, "transcribe", status, time.Since(began))
		observability.EndSpan(span, err)
	}()

	path := clip.Path
	if !IsWholeClip(clip, start, end) {
		p, cleanup, err := a.extractor.Extract(ctx, clip, media.NewTimeRange(start, end))
		if err != nil {
			return "", errors.TranscriptionFailed(start, end, err)
		}
		defer cleanup()
		path = p
	}

	resp, err := a.provider.Transcribe(ctx, Request{AudioPath: path, Language: a.language})
	if err != nil {
		return "", errors.TranscriptionFailed(start, end, err)
	}
	return resp.Text, nil
}
