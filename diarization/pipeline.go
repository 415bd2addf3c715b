package diarization

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/scribe/audio"
	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/pipeline"
)

// ErrAllChunksFailed is returned when every chunk of a clip failed to
// diarize, leaving nothing usable.
var ErrAllChunksFailed = stderrors.New("diarization: all chunks failed")

// Diarizer turns a clip into speaker segments ordered by start.
type Diarizer interface {
	Diarize(ctx context.Context, clip media.Clip) Result
	DiarizeStream(ctx context.Context, clip media.Clip) pipeline.Iterator[media.Segment]
}

// Pipeline diarizes clips chunk by chunk with bounded parallelism.
type Pipeline struct {
	provider  Provider
	detector  audio.ChunkDetector
	extractor audio.RangeExtractor
	cfg       Config
	metrics   *observability.Metrics
	log       *logger.Logger
}

var _ Diarizer = (*Pipeline)(nil)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records chunk and operation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// NewPipeline creates a chunked diarization pipeline.
func NewPipeline(p Provider, detector audio.ChunkDetector, extractor audio.RangeExtractor, cfg Config, opts ...Option) *Pipeline {
	cfg.ApplyDefaults()
	pl := &Pipeline{
		provider:  p,
		detector:  detector,
		extractor: extractor,
		cfg:       cfg,
		metrics:   observability.NopMetrics(),
		log:       logger.WithComponent("diarization"),
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// Diarize materializes DiarizeStream. Any stream error becomes a failed
// Result.
func (p *Pipeline) Diarize(ctx context.Context, clip media.Clip) Result {
	start := time.Now()
	segments, err := pipeline.CollectIter(ctx, p.DiarizeStream(ctx, clip))
	if err != nil {
		p.metrics.RecordOperation(ctx, "diarize", observability.StatusError, time.Since(start))
		return Fail(err)
	}
	p.metrics.RecordOperation(ctx, "diarize", observability.StatusOK, time.Since(start))
	return Success(segments)
}

// DiarizeStream returns a lazy stream of segments with non-decreasing start.
// Each Next that finds the buffer empty diarizes the next batch of up to
// MaxConcurrency chunks in parallel. Close cancels a batch in flight.
func (p *Pipeline) DiarizeStream(ctx context.Context, clip media.Clip) pipeline.Iterator[media.Segment] {
	base, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &chunkStream{p: p, clip: clip, base: base}
	return pipeline.Func(s.next, func() error {
		cancel()
		return nil
	})
}

type chunkStream struct {
	p    *Pipeline
	clip media.Clip
	base context.Context

	detected  bool
	chunks    []media.TimeRange
	nextChunk int
	buf       []media.Segment
	succeeded int
	failed    int
}

func (s *chunkStream) next(ctx context.Context) (media.Segment, bool, error) {
	var zero media.Segment
	if !s.detected {
		if err := s.detect(ctx); err != nil {
			return zero, false, err
		}
	}

	for len(s.buf) == 0 {
		if s.nextChunk >= len(s.chunks) {
			if s.succeeded == 0 {
				return zero, false, fmt.Errorf("%w: %d of %d", ErrAllChunksFailed, s.failed, len(s.chunks))
			}
			return zero, false, nil
		}
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}

		end := min(s.nextChunk+s.p.cfg.MaxConcurrency, len(s.chunks))
		segs, err := s.runBatch(ctx, s.nextChunk, s.chunks[s.nextChunk:end])
		if err != nil {
			return zero, false, err
		}
		s.nextChunk = end
		s.buf = segs
	}

	seg := s.buf[0]
	s.buf = s.buf[1:]
	return seg, true, nil
}

func (s *chunkStream) detect(ctx context.Context) error {
	if !s.p.provider.IsAvailable(ctx) {
		return errors.DiarizationUnavailable(s.p.provider.Name(), nil)
	}
	chunks, err := s.p.detector.Detect(ctx, s.clip)
	if err != nil {
		return fmt.Errorf("detect chunks: %w", err)
	}
	if len(chunks) == 0 {
		return errors.NoUsableChunks(s.clip.ID)
	}
	s.chunks = chunks
	s.detected = true
	s.p.log.Info("diarizing clip", logger.Fields(
		logger.FieldClipID, s.clip.ID,
		"chunks", len(chunks),
		"max_concurrency", s.p.cfg.MaxConcurrency,
	))
	return nil
}

// runBatch diarizes chunks in parallel and returns their segments sorted by
// start. A failed chunk is logged and omitted; an unavailable provider
// aborts the batch.
func (s *chunkStream) runBatch(ctx context.Context, first int, chunks []media.TimeRange) ([]media.Segment, error) {
	bctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.base, cancel)
	defer stop()

	results := make([][]media.Segment, len(chunks))
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(bctx)
	g.SetLimit(len(chunks))
	for i, chunk := range chunks {
		index := first + i
		g.Go(func() error {
			segs, err := s.p.diarizeChunk(gctx, s.clip, index, chunk)
			if err == nil {
				results[i] = segs
				return nil
			}
			if errors.HasCode(err, errors.ErrCodeDiarizationUnavailable) || gctx.Err() != nil {
				return err
			}
			failed.Add(1)
			s.p.log.Warn("chunk skipped", logger.Fields(
				logger.FieldClipID, s.clip.ID,
				logger.FieldChunk, index,
				logger.FieldError, err.Error(),
			))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := bctx.Err(); ctxErr != nil && ctx.Err() == nil {
			return nil, pipeline.ErrClosed
		}
		return nil, err
	}

	var merged []media.Segment
	for _, segs := range results {
		merged = append(merged, segs...)
	}
	media.SortByStart(merged)

	s.failed += int(failed.Load())
	s.succeeded += len(chunks) - int(failed.Load())
	return merged, nil
}

func (p *Pipeline) diarizeChunk(ctx context.Context, clip media.Clip, index int, chunk media.TimeRange) (segs []media.Segment, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanDiarizeChunk,
		attribute.String("clip.id", clip.ID),
		attribute.Int("chunk.index", index),
		attribute.Float64("chunk.start", chunk.Start),
		attribute.Float64("chunk.end", chunk.End),
	)
	p.metrics.ChunkStarted(ctx)
	start := time.Now()
	defer func() {
		p.metrics.ChunkFinished(ctx)
		status := observability.StatusOK
		if err != nil {
			status = observability.StatusError
		}
		p.metrics.RecordOperation(ctx, "diarize_chunk", status, time.Since(start))
		observability.EndSpan(span, err)
	}()

	path, cleanup, err := p.extractor.Extract(ctx, clip, chunk)
	if err != nil {
		return nil, errors.ChunkProcessing(index, chunk.Start, chunk.End, err)
	}
	defer cleanup()

	resp, err := p.provider.Diarize(ctx, Request{
		AudioPath:   path,
		NumSpeakers: p.cfg.NumSpeakers,
		MinSpeakers: p.cfg.MinSpeakers,
		MaxSpeakers: p.cfg.MaxSpeakers,
	})
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeDiarizationUnavailable) {
			return nil, err
		}
		return nil, errors.ChunkProcessing(index, chunk.Start, chunk.End, err)
	}
	return shiftTurns(clip.ID, chunk, resp.Turns), nil
}

// shiftTurns converts chunk-local turns to clip time, clamped to the chunk.
func shiftTurns(clipID string, chunk media.TimeRange, turns []Turn) []media.Segment {
	length := chunk.Duration()
	segs := make([]media.Segment, 0, len(turns))
	for _, t := range turns {
		local := media.NewTimeRange(clampTo(t.Start, length), clampTo(t.End, length))
		segs = append(segs, media.NewSegment(clipID, local.Offset(chunk.Start), t.Speaker))
	}
	return segs
}

func clampTo(v, length float64) float64 {
	if v < 0 {
		return 0
	}
	if v > length {
		return length
	}
	return v
}
