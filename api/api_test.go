package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/clip"
	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/pipeline"
	"github.com/kbukum/scribe/server/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeClips struct {
	records map[string]*clip.Record
	body    []byte
}

func (f *fakeClips) Upload(_ context.Context, in clip.Upload) (*clip.Record, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	rec := &clip.Record{ID: "new-clip", Filename: in.Filename, SizeBytes: int64(len(b))}
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeClips) Get(_ context.Context, id string) (*clip.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, apperrors.ClipNotFound(id)
	}
	return rec, nil
}

func (f *fakeClips) Delete(_ context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return apperrors.ClipNotFound(id)
	}
	delete(f.records, id)
	return nil
}

type fakeTranscripts struct {
	segs      map[string][]media.Segment
	stored    map[string]bool
	failAfter int // stream error after this many segments; 0 disables
}

func (f *fakeTranscripts) lookup(id string) ([]media.Segment, error) {
	segs, ok := f.segs[id]
	if !ok {
		return nil, apperrors.ClipNotFound(id)
	}
	return segs, nil
}

func (f *fakeTranscripts) Execute(_ context.Context, id string) ([]media.Segment, error) {
	return f.lookup(id)
}

func (f *fakeTranscripts) GetOrTranscribe(ctx context.Context, id string) ([]media.Segment, error) {
	return f.Execute(ctx, id)
}

func (f *fakeTranscripts) Stream(_ context.Context, id string) (pipeline.Iterator[media.Segment], error) {
	segs, err := f.lookup(id)
	if err != nil {
		return nil, err
	}
	i := 0
	return pipeline.Func(func(context.Context) (media.Segment, bool, error) {
		if f.failAfter > 0 && i == f.failAfter {
			return media.Segment{}, false, errors.New("model crashed")
		}
		if i >= len(segs) {
			return media.Segment{}, false, nil
		}
		i++
		return segs[i-1], true, nil
	}, nil), nil
}

func (f *fakeTranscripts) GetOrTranscribeStream(ctx context.Context, id string) (pipeline.Iterator[media.Segment], error) {
	return f.Stream(ctx, id)
}

func (f *fakeTranscripts) Delete(_ context.Context, id string) error {
	if !f.stored[id] {
		return apperrors.TranscriptNotFound(id)
	}
	delete(f.stored, id)
	return nil
}

func segments(clipID string, n int) []media.Segment {
	out := make([]media.Segment, n)
	for i := range out {
		out[i] = media.NewSegment(clipID, media.NewTimeRange(float64(i), float64(i+1)), "SPEAKER_00").
			WithText(fmt.Sprintf("line %d", i))
	}
	return out
}

func newTestRouter(clips *fakeClips, tr *fakeTranscripts, limit gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	NewHandler(clips, tr, logger.Nop()).Register(r.Group("/api"), limit)
	return r
}

func do(r http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeLines(t *testing.T, body string) []map[string]json.RawMessage {
	t.Helper()
	var out []map[string]json.RawMessage
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func TestUploadAudio(t *testing.T) {
	clips := &fakeClips{records: map[string]*clip.Record{}}
	r := newTestRouter(clips, &fakeTranscripts{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "meeting.wav")
	_, _ = fw.Write([]byte("RIFFdata"))
	_ = mw.Close()

	w := do(r, http.MethodPost, "/api/audio", &buf, mw.FormDataContentType())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var rec clip.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.ID != "new-clip" || rec.Filename != "meeting.wav" || string(clips.body) != "RIFFdata" {
		t.Errorf("record = %+v, body %q", rec, clips.body)
	}
}

func TestUploadAudio_MissingFile(t *testing.T) {
	r := newTestRouter(&fakeClips{records: map[string]*clip.Record{}}, &fakeTranscripts{}, nil)
	w := do(r, http.MethodPost, "/api/audio", strings.NewReader(""), "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAudioGetDelete(t *testing.T) {
	clips := &fakeClips{records: map[string]*clip.Record{"c1": {ID: "c1"}}}
	r := newTestRouter(clips, &fakeTranscripts{}, nil)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/api/audio/c1", http.StatusOK},
		{http.MethodGet, "/api/audio/nope", http.StatusNotFound},
		{http.MethodDelete, "/api/audio/c1", http.StatusNoContent},
		{http.MethodDelete, "/api/audio/c1", http.StatusNotFound},
	}
	for _, tt := range tests {
		if w := do(r, tt.method, tt.target, nil, ""); w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.target, w.Code, tt.want)
		}
	}
}

func TestTranscribe(t *testing.T) {
	tr := &fakeTranscripts{segs: map[string][]media.Segment{"c1": segments("c1", 2)}}
	r := newTestRouter(&fakeClips{}, tr, nil)

	for _, target := range []string{"/api/transcribe?clip_id=c1", "/api/transcription/c1"} {
		method := http.MethodPost
		if strings.HasPrefix(target, "/api/transcription") {
			method = http.MethodGet
		}
		w := do(r, method, target, nil, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, w.Code)
		}
		var resp TranscriptionResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		want := SegmentView{Speaker: "SPEAKER_00", Start: 1, End: 2, Text: "line 1"}
		if len(resp.Segments) != 2 || resp.Segments[1] != want {
			t.Errorf("%s: segments = %+v", target, resp.Segments)
		}
	}
}

func TestTranscribe_Errors(t *testing.T) {
	r := newTestRouter(&fakeClips{}, &fakeTranscripts{segs: map[string][]media.Segment{}}, nil)

	tests := []struct {
		name     string
		method   string
		target   string
		want     int
		wantCode apperrors.ErrorCode
	}{
		{"missing clip_id", http.MethodPost, "/api/transcribe", http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"unknown clip", http.MethodPost, "/api/transcribe?clip_id=x", http.StatusNotFound, apperrors.ErrCodeClipNotFound},
		{"unknown clip stream", http.MethodPost, "/api/transcribe/stream?clip_id=x", http.StatusNotFound, apperrors.ErrCodeClipNotFound},
		{"unknown clip replay", http.MethodGet, "/api/transcription/stream/x", http.StatusNotFound, apperrors.ErrCodeClipNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.target, nil, "")
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error.Code != tt.wantCode || body.Error.RequestID == "" {
				t.Errorf("error = %+v", body.Error)
			}
		})
	}
}

func TestTranscribeStream(t *testing.T) {
	want := segments("c1", 3)
	r := newTestRouter(&fakeClips{}, &fakeTranscripts{segs: map[string][]media.Segment{"c1": want}}, nil)

	w := do(r, http.MethodPost, "/api/transcribe/stream?clip_id=c1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != NDJSONContentType {
		t.Errorf("content type = %q", ct)
	}
	if !w.Flushed {
		t.Error("response was not flushed")
	}
	lines := decodeLines(t, w.Body.String())
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i, line := range lines {
		var seg media.Segment
		if err := json.Unmarshal(line["segment"], &seg); err != nil {
			t.Fatal(err)
		}
		if seg != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, seg, want[i])
		}
	}
}

func TestTranscriptionStream_Batches(t *testing.T) {
	r := newTestRouter(&fakeClips{}, &fakeTranscripts{segs: map[string][]media.Segment{"c1": segments("c1", 23)}}, nil)

	w := do(r, http.MethodGet, "/api/transcription/stream/c1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var sizes []int
	for _, line := range decodeLines(t, w.Body.String()) {
		var segs []media.Segment
		if err := json.Unmarshal(line["segments"], &segs); err != nil {
			t.Fatal(err)
		}
		sizes = append(sizes, len(segs))
	}
	if fmt.Sprint(sizes) != "[10 10 3]" {
		t.Errorf("batch sizes = %v, want [10 10 3]", sizes)
	}
}

func TestTranscribeStream_ErrorAfterFirstLine(t *testing.T) {
	tr := &fakeTranscripts{segs: map[string][]media.Segment{"c1": segments("c1", 3)}, failAfter: 2}
	r := newTestRouter(&fakeClips{}, tr, nil)

	w := do(r, http.MethodPost, "/api/transcribe/stream?clip_id=c1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	lines := decodeLines(t, w.Body.String())
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 2 segments and an error", len(lines))
	}
	if _, ok := lines[2]["error"]; !ok {
		t.Errorf("last line = %v, want error", lines[2])
	}
}

func TestDeleteTranscription(t *testing.T) {
	r := newTestRouter(&fakeClips{}, &fakeTranscripts{stored: map[string]bool{"c1": true}}, nil)

	if w := do(r, http.MethodDelete, "/api/transcription/c1", nil, ""); w.Code != http.StatusNoContent {
		t.Errorf("first delete = %d, want 204", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/transcription/c1", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestRegister_RateLimitOnlyGuardsModelRoutes(t *testing.T) {
	clips := &fakeClips{records: map[string]*clip.Record{"c1": {ID: "c1"}}}
	tr := &fakeTranscripts{segs: map[string][]media.Segment{"c1": segments("c1", 1)}}
	limit := middleware.RateLimit(middleware.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1})
	r := newTestRouter(clips, tr, limit)

	if w := do(r, http.MethodPost, "/api/transcribe?clip_id=c1", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("first transcribe = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/transcription/c1", nil, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("second model call = %d, want 429", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/audio/c1", nil, ""); w.Code != http.StatusOK {
		t.Errorf("metadata read = %d, want 200", w.Code)
	}
}
