package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/transcription"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "span.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if r.FormValue("model") != "small" || r.FormValue("language") != "en" {
			t.Errorf("model=%q language=%q", r.FormValue("model"), r.FormValue("language"))
		}
		_ = json.NewEncoder(w).Encode(whisperResponse{
			Text:     "hello there",
			Segments: []whisperSegment{{Text: "hello there", Start: 0, End: 1.5}},
			Language: "en",
		})
	}))
	defer srv.Close()

	p, err := NewProvider(transcription.ProviderConfig{BaseURL: srv.URL, Model: "small", Language: "en"})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudio(t)})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "hello there" || resp.Duration != 1.5 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestTranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p, _ := NewProvider(transcription.ProviderConfig{BaseURL: srv.URL})
	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudio(t)})
	if !errors.HasCode(err, errors.ErrCodeExternalService) {
		t.Errorf("expected external service error, got %v", err)
	}
}
