package transcript

import (
	"context"
	"time"

	"github.com/kbukum/scribe/diarization"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/pipeline"
)

// Stream transcribes the clip lazily. Each Next pulls one diarized segment,
// transcribes it and returns it; segment i+1 is not started before segment i
// is delivered. The transcript is persisted when the stream is exhausted,
// unless diarization failed after the first segment was delivered.
// A missing clip is reported before any streaming starts.
func (o *Orchestrator) Stream(ctx context.Context, clipID string) (pipeline.Iterator[media.Segment], error) {
	clip, err := o.clips.Fetch(ctx, clipID)
	if err != nil {
		return nil, err
	}
	s := &segmentStream{
		o:     o,
		clip:  clip,
		diar:  o.diarizer.DiarizeStream(ctx, clip),
		began: time.Now(),
	}
	return pipeline.Func(s.next, s.diar.Close), nil
}

// GetOrTranscribeStream replays a stored transcript or streams a new one.
func (o *Orchestrator) GetOrTranscribeStream(ctx context.Context, clipID string) (pipeline.Iterator[media.Segment], error) {
	stored, err := o.cached(ctx, clipID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return pipeline.Slice(stored), nil
	}
	return o.Stream(ctx, clipID)
}

// segmentStream is the state behind Stream. truncated marks a stream whose
// diarization failed after emission; its segments are never stored.
type segmentStream struct {
	o         *Orchestrator
	clip      media.Clip
	diar      pipeline.Iterator[media.Segment]
	emitted   []media.Segment
	status    string
	began     time.Time
	done      bool
	truncated bool
}

func (s *segmentStream) next(ctx context.Context) (media.Segment, bool, error) {
	var zero media.Segment
	if s.done {
		return zero, false, s.finish(ctx)
	}

	seg, ok, err := s.diar.Next(ctx)
	switch {
	case err != nil && isStreamAbort(ctx, err):
		return zero, false, err
	case err != nil && len(s.emitted) == 0:
		s.o.useFallback(ctx, s.clip, diarization.Fail(err))
		return s.emitFallback(ctx)
	case err != nil:
		s.o.log.WithContext(ctx).Warn("diarization stopped mid-stream, transcript not stored", logger.Fields(
			logger.FieldClipID, s.clip.ID,
			logger.FieldError, err.Error(),
			"emitted", len(s.emitted),
		))
		s.done = true
		s.truncated = true
		return zero, false, s.finish(ctx)
	case !ok && len(s.emitted) == 0:
		s.o.useFallback(ctx, s.clip, diarization.Success(nil))
		return s.emitFallback(ctx)
	case !ok:
		s.done = true
		return zero, false, s.finish(ctx)
	}

	text, err := s.o.streamText(ctx, s.clip, seg.Start, seg.End)
	if err != nil {
		return zero, false, err
	}
	seg = seg.WithText(text)
	s.emitted = append(s.emitted, seg)
	return seg, true, nil
}

func (s *segmentStream) emitFallback(ctx context.Context) (media.Segment, bool, error) {
	text, err := s.o.streamText(ctx, s.clip, 0, 0)
	if err != nil {
		return media.Segment{}, false, err
	}
	seg := media.FallbackSegment(s.clip.ID).WithText(text)
	s.emitted = append(s.emitted, seg)
	s.status = observability.StatusFallback
	s.done = true
	return seg, true, nil
}

// finish persists the drained transcript. The pipeline.Func wrapper never
// calls next again after a clean exhaustion, so this runs once. A truncated
// stream is not stored, so the next GetOrTranscribe recomputes the clip.
func (s *segmentStream) finish(ctx context.Context) error {
	if s.truncated {
		s.o.metrics.RecordOperation(ctx, "transcript_stream", observability.StatusError, time.Since(s.began))
		return nil
	}
	status := s.status
	if status == "" {
		status = observability.StatusOK
	}
	if err := s.o.repo.Save(ctx, s.clip.ID, s.emitted); err != nil {
		s.o.metrics.RecordOperation(ctx, "transcript_stream", observability.StatusError, time.Since(s.began))
		return err
	}
	s.o.metrics.RecordOperation(ctx, "transcript_stream", status, time.Since(s.began))
	s.o.log.WithContext(ctx).Info("streamed transcript stored", logger.Fields(
		logger.FieldClipID, s.clip.ID,
		"segments", len(s.emitted),
		"status", status,
	))
	return nil
}
