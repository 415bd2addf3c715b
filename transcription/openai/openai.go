// Package openai implements transcription.Provider against an
// OpenAI-compatible audio transcription endpoint.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/transcription"
)

const (
	// ProviderName is the registered name for this provider.
	ProviderName = "openai"

	DefaultBase  = "https://api.openai.com/v1"
	DefaultModel = "whisper-1"
)

// Provider calls POST {base}/audio/transcriptions with a bearer key.
type Provider struct {
	cfg    transcription.ProviderConfig
	client *httpclient.Client
}

var _ transcription.Provider = (*Provider)(nil)

// NewProvider creates the provider. An empty APIKey falls back to
// OPENAI_API_KEY.
func NewProvider(cfg transcription.ProviderConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, errors.InvalidInput("api_key", "missing API key (set transcription.sidecar.api_key or OPENAI_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBase
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	retry := httpclient.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}

	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
		Retry:   retry,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory builds a Provider for the transcription registry.
func Factory(cfg transcription.ProviderConfig) (transcription.Provider, error) {
	return NewProvider(cfg)
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether a key is configured; the hosted API has no
// health endpoint worth spending a request on.
func (p *Provider) IsAvailable(context.Context) bool { return p.cfg.APIKey != "" }

func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	data, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	fields := map[string]string{"model": model, "response_format": "verbose_json"}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	if lang != "" {
		fields["language"] = lang
	}

	var out transcribeResponse
	err = p.client.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "audio/transcriptions",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files:  []httpclient.FileField{{FieldName: "file", FileName: filepath.Base(req.AudioPath), Data: data}},
		},
	}, &out)
	if err != nil {
		return nil, errors.ExternalServiceError(ProviderName, err)
	}

	segs := make([]transcription.Segment, len(out.Segments))
	for i, s := range out.Segments {
		segs[i] = transcription.Segment{Start: s.Start, End: s.End, Text: s.Text}
	}
	return &transcription.Response{
		Text:     out.Text,
		Segments: segs,
		Duration: out.Duration,
		Language: out.Language,
	}, nil
}

type transcribeResponse struct {
	Task     string  `json:"task"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}
