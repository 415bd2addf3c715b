package transcript

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/kbukum/scribe/diarization"
	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/pipeline"
	"github.com/kbukum/scribe/transcription"
)

// Orchestrator turns clips into persisted transcripts.
type Orchestrator struct {
	clips       ClipSource
	diarizer    diarization.Diarizer
	transcriber transcription.Transcriber
	repo        Repository
	metrics     *observability.Metrics
	log         *logger.Logger
	inflight    singleflight.Group
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics records operation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// NewOrchestrator wires the collaborators of the transcription flow.
func NewOrchestrator(clips ClipSource, d diarization.Diarizer, t transcription.Transcriber, repo Repository, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		clips:       clips,
		diarizer:    d,
		transcriber: t,
		repo:        repo,
		metrics:     observability.NopMetrics(),
		log:         logger.WithComponent("transcript"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute transcribes the clip from scratch and persists the result,
// replacing any stored transcript.
func (o *Orchestrator) Execute(ctx context.Context, clipID string) (segs []media.Segment, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanExecute, attribute.String("clip.id", clipID))
	began := time.Now()
	status := observability.StatusOK
	defer func() {
		if err != nil {
			status = observability.StatusError
		}
		o.metrics.RecordOperation(ctx, "transcript", status, time.Since(began))
		observability.EndSpan(span, err)
	}()

	clip, err := o.clips.Fetch(ctx, clipID)
	if err != nil {
		return nil, err
	}

	res := o.diarizer.Diarize(ctx, clip)
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}

	if o.useFallback(ctx, clip, res) {
		status = observability.StatusFallback
		segs = []media.Segment{o.fallback(ctx, clip)}
	} else {
		segs = make([]media.Segment, 0, len(res.Segments))
		for _, seg := range res.Segments {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			text := o.transcriber.Transcribe(ctx, clip, seg.Start, seg.End)
			segs = append(segs, seg.WithText(text))
		}
	}

	if err := o.repo.Save(ctx, clipID, segs); err != nil {
		return nil, err
	}
	o.log.WithContext(ctx).Info("transcript stored", logger.Fields(
		logger.FieldClipID, clipID,
		"segments", len(segs),
		"status", status,
	))
	return segs, nil
}

// GetOrTranscribe returns the stored transcript, computing and persisting
// it first when none exists. Concurrent calls for one clip share the work,
// which runs detached from any single caller: a caller that gives up gets
// its own context error while the others still receive the result.
func (o *Orchestrator) GetOrTranscribe(ctx context.Context, clipID string) ([]media.Segment, error) {
	stored, err := o.cached(ctx, clipID)
	if err != nil || stored != nil {
		return stored, err
	}

	shared := context.WithoutCancel(ctx)
	ch := o.inflight.DoChan(clipID, func() (any, error) {
		stored, err := o.cached(shared, clipID)
		if err != nil || stored != nil {
			return stored, err
		}
		return o.Execute(shared, clipID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		segs := res.Val.([]media.Segment)
		return append([]media.Segment(nil), segs...), nil
	}
}

// cached returns the stored transcript, or nil when there is none.
func (o *Orchestrator) cached(ctx context.Context, clipID string) ([]media.Segment, error) {
	stored, err := o.repo.List(ctx, clipID)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	o.metrics.RecordOperation(ctx, "transcript", observability.StatusCached, 0)
	return stored, nil
}

// Delete removes the stored transcript. Absent transcripts yield
// TranscriptNotFound.
func (o *Orchestrator) Delete(ctx context.Context, clipID string) error {
	existed, err := o.repo.Delete(ctx, clipID)
	if err != nil {
		return errors.DeletionFailed("transcript", clipID, err)
	}
	if !existed {
		return errors.TranscriptNotFound(clipID)
	}
	o.log.WithContext(ctx).Info("transcript deleted", logger.Fields(logger.FieldClipID, clipID))
	return nil
}

// useFallback reports whether diarization produced nothing usable.
func (o *Orchestrator) useFallback(ctx context.Context, clip media.Clip, res diarization.Result) bool {
	if res.Failed() {
		o.log.WithContext(ctx).Warn("diarization failed, falling back to whole clip", logger.Fields(
			logger.FieldClipID, clip.ID,
			logger.FieldError, res.Failure.Error(),
			"unavailable", errors.HasCode(res.Failure, errors.ErrCodeDiarizationUnavailable),
		))
		return true
	}
	if len(res.Segments) == 0 {
		o.log.WithContext(ctx).Warn("diarization found no speech, falling back to whole clip", logger.Fields(logger.FieldClipID, clip.ID))
		return true
	}
	return false
}

// fallback returns the single UNKNOWN (0,0) segment carrying whole-clip text.
func (o *Orchestrator) fallback(ctx context.Context, clip media.Clip) media.Segment {
	text := o.transcriber.Transcribe(ctx, clip, 0, 0)
	return media.FallbackSegment(clip.ID).WithText(text)
}

// streamText joins the fragments of a streamed transcription.
func (o *Orchestrator) streamText(ctx context.Context, clip media.Clip, start, end float64) (string, error) {
	parts, err := pipeline.CollectIter(ctx, o.transcriber.TranscribeStream(ctx, clip, start, end))
	if err != nil {
		return "", err
	}
	return strings.Join(parts, " "), nil
}

// isStreamAbort reports errors that must end a stream rather than trigger
// the fallback.
func isStreamAbort(ctx context.Context, err error) bool {
	return ctx.Err() != nil || stderrors.Is(err, pipeline.ErrClosed) ||
		stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
