// Package pyannote implements diarization.Provider against the Pyannote
// HTTP sidecar (POST /diarize with multipart audio, GET /health).
package pyannote

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kbukum/scribe/diarization"
	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
)

const (
	// ProviderName is the registered name for the Pyannote provider.
	ProviderName = "pyannote"

	defaultPyannoteURL     = "http://localhost:8388"
	defaultPyannoteTimeout = 300 * time.Second
)

// Provider implements diarization.Provider using the Pyannote HTTP sidecar.
type Provider struct {
	client *httpclient.Client
}

var _ diarization.Provider = (*Provider)(nil)

// NewProvider creates a new Pyannote diarization provider.
func NewProvider(cfg diarization.ProviderConfig) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPyannoteURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultPyannoteTimeout
	}
	retry := httpclient.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}

	hc := httpclient.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout, Retry: retry}
	if cfg.APIKey != "" {
		hc.Auth = httpclient.BearerAuth(cfg.APIKey)
	}
	client, err := httpclient.New(hc)
	if err != nil {
		return nil, fmt.Errorf("pyannote: %w", err)
	}
	return &Provider{client: client}, nil
}

// Factory builds a Provider for the diarization registry.
func Factory(cfg diarization.ProviderConfig) (diarization.Provider, error) {
	return NewProvider(cfg)
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Pyannote sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil && resp.IsSuccess()
}

// Diarize sends audio to the Pyannote sidecar. Connection failures are
// reported as DiarizationUnavailable.
func (p *Provider) Diarize(ctx context.Context, req diarization.Request) (*diarization.Response, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	fields := map[string]string{}
	if req.NumSpeakers > 0 {
		fields["num_speakers"] = strconv.Itoa(req.NumSpeakers)
	}
	if req.MinSpeakers > 0 {
		fields["min_speakers"] = strconv.Itoa(req.MinSpeakers)
	}
	if req.MaxSpeakers > 0 {
		fields["max_speakers"] = strconv.Itoa(req.MaxSpeakers)
	}

	var result pyannoteResponse
	err = p.client.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/diarize",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "audio",
				FileName:    filepath.Base(req.AudioPath),
				ContentType: "audio/wav",
				Data:        audioData,
			}},
		},
	}, &result)
	if err != nil {
		if httpclient.IsUnreachable(err) {
			return nil, errors.DiarizationUnavailable(ProviderName, err)
		}
		return nil, errors.ExternalServiceError(ProviderName, err)
	}
	if result.Error != "" {
		return nil, errors.ExternalServiceError(ProviderName, fmt.Errorf("sidecar: %s", result.Error))
	}
	return toResponse(&result), nil
}

// --- internal Pyannote API types ---

type pyannoteResponse struct {
	Segments    []pyannoteSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
	Error       string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func toResponse(resp *pyannoteResponse) *diarization.Response {
	turns := make([]diarization.Turn, len(resp.Segments))
	for i, seg := range resp.Segments {
		turns[i] = diarization.Turn{
			Speaker: seg.SpeakerID,
			Start:   seg.StartTime,
			End:     seg.EndTime,
		}
	}
	return &diarization.Response{Turns: turns, NumSpeakers: resp.NumSpeakers}
}
