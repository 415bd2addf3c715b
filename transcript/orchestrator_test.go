package transcript

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/scribe/diarization"
	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/pipeline"
	"github.com/kbukum/scribe/transcription"
)

type fakeClips map[string]media.Clip

func (f fakeClips) Fetch(_ context.Context, id string) (media.Clip, error) {
	c, ok := f[id]
	if !ok {
		return media.Clip{}, errors.ClipNotFound(id)
	}
	return c, nil
}

// fakeDiarizer returns fixed segments. streamErrAt > 0 makes the stream fail
// after that many segments; err makes both modes fail up front.
type fakeDiarizer struct {
	segs        []media.Segment
	err         error
	streamErrAt int
	calls       atomic.Int32
}

func (f *fakeDiarizer) Diarize(_ context.Context, _ media.Clip) diarization.Result {
	f.calls.Add(1)
	if f.err != nil {
		return diarization.Fail(f.err)
	}
	out := make([]media.Segment, len(f.segs))
	copy(out, f.segs)
	return diarization.Success(out)
}

func (f *fakeDiarizer) DiarizeStream(_ context.Context, _ media.Clip) pipeline.Iterator[media.Segment] {
	f.calls.Add(1)
	i := 0
	return pipeline.Func(func(context.Context) (media.Segment, bool, error) {
		if f.err != nil {
			return media.Segment{}, false, f.err
		}
		if f.streamErrAt > 0 && i == f.streamErrAt {
			return media.Segment{}, false, errors.DiarizationUnavailable("fake", nil)
		}
		if i >= len(f.segs) {
			return media.Segment{}, false, nil
		}
		s := f.segs[i]
		i++
		return s, true, nil
	}, nil)
}

type call struct{ start, end float64 }

type fakeTranscriber struct {
	mu    sync.Mutex
	calls []call
}

func (f *fakeTranscriber) Transcribe(_ context.Context, clip media.Clip, start, end float64) string {
	f.mu.Lock()
	f.calls = append(f.calls, call{start, end})
	f.mu.Unlock()
	if start == 0 && end == 0 {
		return "whole " + clip.ID
	}
	return fmt.Sprintf("text %.1f-%.1f", start, end)
}

func (f *fakeTranscriber) TranscribeStream(ctx context.Context, clip media.Clip, start, end float64) pipeline.Iterator[string] {
	return pipeline.Single(f.Transcribe(ctx, clip, start, end))
}

func (f *fakeTranscriber) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memRepo struct {
	mu    sync.Mutex
	data  map[string][]media.Segment
	saves int
}

func newMemRepo() *memRepo { return &memRepo{data: map[string][]media.Segment{}} }

func (r *memRepo) Save(_ context.Context, id string, segs []media.Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.data[id] = append([]media.Segment(nil), segs...)
	return nil
}

func (r *memRepo) List(_ context.Context, id string) ([]media.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]media.Segment(nil), r.data[id]...), nil
}

func (r *memRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[id]
	delete(r.data, id)
	return ok, nil
}

func diarized(clipID string) []media.Segment {
	return []media.Segment{
		media.NewSegment(clipID, media.NewTimeRange(0, 2), "SPEAKER_00"),
		media.NewSegment(clipID, media.NewTimeRange(2, 4), "SPEAKER_01"),
		media.NewSegment(clipID, media.NewTimeRange(4.7, 8), "SPEAKER_00"),
	}
}

type fixture struct {
	o    *Orchestrator
	d    *fakeDiarizer
	t    *fakeTranscriber
	repo *memRepo
}

func newFixture(d *fakeDiarizer) fixture {
	tr := &fakeTranscriber{}
	repo := newMemRepo()
	clips := fakeClips{"clip-1": {ID: "clip-1", Path: "/audio/clip-1.wav", Duration: 12}}
	o := NewOrchestrator(clips, d, tr, repo, WithLogger(logger.Nop()))
	return fixture{o: o, d: d, t: tr, repo: repo}
}

func TestExecute_TranscribesEachSegment(t *testing.T) {
	f := newFixture(&fakeDiarizer{segs: diarized("clip-1")})

	segs, err := f.o.Execute(context.Background(), "clip-1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	for i, s := range segs {
		want := fmt.Sprintf("text %.1f-%.1f", s.Start, s.End)
		if s.Text != want {
			t.Errorf("segment %d text = %q, want %q", i, s.Text, want)
		}
		if i > 0 && s.Start < segs[i-1].Start {
			t.Errorf("segment %d out of order", i)
		}
	}
	if stored, _ := f.repo.List(context.Background(), "clip-1"); len(stored) != 3 {
		t.Errorf("stored %d segments, want 3", len(stored))
	}
}

func TestExecute_FallbackOnDiarizationFailure(t *testing.T) {
	tests := []struct {
		name string
		d    *fakeDiarizer
	}{
		{"unavailable", &fakeDiarizer{err: errors.DiarizationUnavailable("fake", nil)}},
		{"all chunks failed", &fakeDiarizer{err: fmt.Errorf("%w: 3 of 3", diarization.ErrAllChunksFailed)}},
		{"no usable chunks", &fakeDiarizer{err: errors.NoUsableChunks("clip-1")}},
		{"no speech", &fakeDiarizer{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.d)
			segs, err := f.o.Execute(context.Background(), "clip-1")
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if len(segs) != 1 {
				t.Fatalf("got %d segments, want 1", len(segs))
			}
			s := segs[0]
			if s.SpeakerLabel != media.UnknownSpeaker || s.Start != 0 || s.End != 0 {
				t.Errorf("fallback = %+v, want UNKNOWN (0,0)", s)
			}
			if s.Text != "whole clip-1" {
				t.Errorf("fallback text = %q", s.Text)
			}
			if f.t.count() != 1 {
				t.Errorf("transcriber calls = %d, want 1", f.t.count())
			}
		})
	}
}

func TestExecute_ClipNotFound(t *testing.T) {
	f := newFixture(&fakeDiarizer{segs: diarized("x")})
	_, err := f.o.Execute(context.Background(), "missing")
	if !errors.HasCode(err, errors.ErrCodeClipNotFound) {
		t.Fatalf("err = %v, want CLIP_NOT_FOUND", err)
	}
	if f.d.calls.Load() != 0 {
		t.Error("diarizer should not run for a missing clip")
	}
}

func TestExecute_CanceledContextIsNotFallback(t *testing.T) {
	f := newFixture(&fakeDiarizer{err: context.Canceled})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.o.Execute(ctx, "clip-1"); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if f.repo.saves != 0 {
		t.Error("canceled request should not persist")
	}
}

func TestGetOrTranscribe_ComputesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeDiarizer{segs: diarized("clip-1")})

	first, err := f.o.GetOrTranscribe(ctx, "clip-1")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := f.o.GetOrTranscribe(ctx, "clip-1")
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if f.d.calls.Load() != 1 {
		t.Errorf("diarizer calls = %d, want 1", f.d.calls.Load())
	}
	if f.t.count() != 3 {
		t.Errorf("transcriber calls = %d, want 3", f.t.count())
	}
	if len(first) != len(second) {
		t.Fatalf("results differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("segment %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// blockingDiarizer holds Diarize until release is closed.
type blockingDiarizer struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newBlockingDiarizer() *blockingDiarizer {
	return &blockingDiarizer{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingDiarizer) Diarize(_ context.Context, clip media.Clip) diarization.Result {
	b.calls.Add(1)
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-b.release
	return diarization.Success(diarized(clip.ID))
}

func (b *blockingDiarizer) DiarizeStream(context.Context, media.Clip) pipeline.Iterator[media.Segment] {
	return pipeline.Slice[media.Segment](nil)
}

func TestGetOrTranscribe_CanceledCallerDoesNotFailOthers(t *testing.T) {
	d := newBlockingDiarizer()
	repo := newMemRepo()
	clips := fakeClips{"clip-1": {ID: "clip-1", Path: "/audio/clip-1.wav", Duration: 12}}
	o := NewOrchestrator(clips, d, &fakeTranscriber{}, repo, WithLogger(logger.Nop()))

	type outcome struct {
		segs []media.Segment
		err  error
	}
	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	resA := make(chan outcome, 1)
	go func() {
		segs, err := o.GetOrTranscribe(ctxA, "clip-1")
		resA <- outcome{segs, err}
	}()
	<-d.started

	resB := make(chan outcome, 1)
	go func() {
		segs, err := o.GetOrTranscribe(context.Background(), "clip-1")
		resB <- outcome{segs, err}
	}()

	cancelA()
	select {
	case a := <-resA:
		if !stderrors.Is(a.err, context.Canceled) {
			t.Errorf("canceled caller err = %v, want context.Canceled", a.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("canceled caller did not return")
	}

	close(d.release)
	select {
	case b := <-resB:
		if b.err != nil {
			t.Fatalf("waiting caller err = %v", b.err)
		}
		if len(b.segs) != 3 {
			t.Errorf("waiting caller got %d segments, want 3", len(b.segs))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("waiting caller did not return")
	}

	if d.calls.Load() != 1 {
		t.Errorf("diarizer calls = %d, want 1", d.calls.Load())
	}
	if stored, _ := repo.List(context.Background(), "clip-1"); len(stored) != 3 {
		t.Errorf("stored %d segments, want 3", len(stored))
	}
}

// lateRepo reports an empty store on the first List and then finds the
// transcript that a concurrent computation saved in the meantime.
type lateRepo struct {
	*memRepo
	lists atomic.Int32
}

func (r *lateRepo) List(ctx context.Context, id string) ([]media.Segment, error) {
	if r.lists.Add(1) == 1 {
		_ = r.memRepo.Save(ctx, id, diarized(id))
		return nil, nil
	}
	return r.memRepo.List(ctx, id)
}

func TestGetOrTranscribe_RechecksStoreBeforeComputing(t *testing.T) {
	d := &fakeDiarizer{segs: diarized("clip-1")}
	repo := &lateRepo{memRepo: newMemRepo()}
	clips := fakeClips{"clip-1": {ID: "clip-1", Path: "/audio/clip-1.wav", Duration: 12}}
	o := NewOrchestrator(clips, d, &fakeTranscriber{}, repo, WithLogger(logger.Nop()))

	segs, err := o.GetOrTranscribe(context.Background(), "clip-1")
	if err != nil {
		t.Fatalf("GetOrTranscribe: %v", err)
	}
	if len(segs) != 3 {
		t.Errorf("got %d segments, want 3", len(segs))
	}
	if d.calls.Load() != 0 {
		t.Errorf("diarizer calls = %d, want the stored transcript reused", d.calls.Load())
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeDiarizer{segs: diarized("clip-1")})

	if err := f.o.Delete(ctx, "clip-1"); !errors.HasCode(err, errors.ErrCodeTranscriptNotFound) {
		t.Fatalf("Delete absent err = %v, want TRANSCRIPT_NOT_FOUND", err)
	}

	if _, err := f.o.Execute(ctx, "clip-1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if err := f.o.Delete(ctx, "clip-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := f.repo.List(ctx, "clip-1"); len(got) != 0 {
		t.Errorf("List after delete = %d segments, want 0", len(got))
	}
}

var (
	_ diarization.Diarizer      = (*fakeDiarizer)(nil)
	_ diarization.Diarizer      = (*blockingDiarizer)(nil)
	_ transcription.Transcriber = (*fakeTranscriber)(nil)
)
