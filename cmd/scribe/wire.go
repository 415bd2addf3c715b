package main

import (
	"fmt"

	"github.com/kbukum/scribe/audio"
	"github.com/kbukum/scribe/bootstrap"
	"github.com/kbukum/scribe/clip"
	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/diarization"
	"github.com/kbukum/scribe/diarization/pyannote"
	"github.com/kbukum/scribe/diarization/single"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/migrations"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/process"
	"github.com/kbukum/scribe/redis"
	"github.com/kbukum/scribe/storage"
	_ "github.com/kbukum/scribe/storage/local"
	_ "github.com/kbukum/scribe/storage/s3"
	"github.com/kbukum/scribe/transcript"
	"github.com/kbukum/scribe/transcript/gormstore"
	"github.com/kbukum/scribe/transcript/redisstore"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/openai"
	"github.com/kbukum/scribe/transcription/whisper"
)

// infra holds the lifecycle-managed components. Their resources exist only
// after the registry has started them.
type infra struct {
	telemetry *observability.Component
	db        *database.Component
	store     *storage.Component
	cache     *redis.Component
}

// services is the business wiring built on started components.
type services struct {
	clips        *clip.Service
	orchestrator *transcript.Orchestrator
}

// registerInfra registers components in dependency order.
func registerInfra(app *bootstrap.App[*Config]) (*infra, error) {
	cfg := app.Cfg
	in := &infra{
		telemetry: observability.NewComponent(cfg.Observability, observability.ServiceInfo{
			Name:        app.Name,
			Version:     app.Version,
			Environment: cfg.Environment,
		}, app.Logger),
		db:    database.NewComponent(cfg.Database, app.Logger).WithMigrations(migrations.FS, "."),
		store: storage.NewComponent(cfg.Storage, app.Logger),
	}
	if cfg.Transcripts.Backend == BackendRedis {
		in.cache = redis.NewComponent(cfg.Redis, app.Logger)
	}

	comps := []component.Component{in.telemetry, in.db, in.store}
	if in.cache != nil {
		comps = append(comps, in.cache)
	}
	for _, c := range comps {
		if err := app.RegisterComponent(c); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// buildServices constructs the models once and injects them.
func buildServices(cfg *Config, in *infra, log *logger.Logger) (*services, error) {
	runner := process.Exec{Timeout: cfg.Audio.Timeout}
	detector := audio.NewDetector(runner, cfg.Audio)
	extractor := audio.NewExtractor(runner, cfg.Audio)
	prober := audio.NewProber(runner, cfg.Audio)

	metrics, err := observability.NewMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	diarizers := diarization.NewRegistry()
	diarizers.RegisterFactory(pyannote.ProviderName, pyannote.Factory)
	diarizers.RegisterFactory(single.ProviderName, single.Factory(prober))
	dp, err := diarizers.Build(cfg.Diarization.Provider, cfg.Diarization.Sidecar)
	if err != nil {
		return nil, fmt.Errorf("diarization provider %q: %w", cfg.Diarization.Provider, err)
	}
	diarizer := diarization.NewPipeline(
		diarization.Serialize(dp, cfg.Diarization.Lanes), detector, extractor, cfg.Diarization,
		diarization.WithMetrics(metrics), diarization.WithLogger(log),
	)

	transcribers := transcription.NewRegistry()
	transcribers.RegisterFactory(whisper.ProviderName, whisper.Factory)
	transcribers.RegisterFactory(openai.ProviderName, openai.Factory)
	tp, err := transcribers.Build(cfg.Transcription.Provider, cfg.Transcription.Sidecar)
	if err != nil {
		return nil, fmt.Errorf("transcription provider %q: %w", cfg.Transcription.Provider, err)
	}
	transcriber := transcription.NewAdapter(
		transcription.Serialize(tp, cfg.Transcription.Lanes), extractor, cfg.Transcription.Sidecar.Language, metrics,
	)

	clipOpts := []clip.Option{clip.WithProber(prober), clip.WithMaxSize(cfg.Storage.MaxFileSize)}
	if cfg.Storage.CacheDir != "" {
		clipOpts = append(clipOpts, clip.WithCacheDir(cfg.Storage.CacheDir))
	}
	clips := clip.NewService(in.store.Storage(), clip.NewGormRepository(in.db.DB()), log, clipOpts...)

	var repo transcript.Repository = gormstore.New(in.db.DB())
	if in.cache != nil {
		repo = redisstore.New(in.cache.Client(), cfg.Redis.KeyPrefix)
	}

	log.Info("Models wired", logger.Fields(
		"diarization", dp.Name(),
		"transcription", tp.Name(),
		"max_concurrency", cfg.Diarization.MaxConcurrency,
		"transcripts", cfg.Transcripts.Backend,
	))
	return &services{
		clips: clips,
		orchestrator: transcript.NewOrchestrator(clips, diarizer, transcriber, repo,
			transcript.WithMetrics(metrics), transcript.WithLogger(log)),
	}, nil
}
