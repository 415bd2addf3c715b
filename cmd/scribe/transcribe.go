package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kbukum/scribe/bootstrap"
	"github.com/kbukum/scribe/clip"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/pipeline"
)

type transcribeOptions struct {
	stream         bool
	maxConcurrency int
	speaker        string
}

// keep reports whether s passes the --speaker filter.
func (o transcribeOptions) keep(s media.Segment) bool {
	return o.speaker == "" || s.SpeakerLabel == o.speaker
}

func newTranscribeCmd(flags *globalFlags) *cobra.Command {
	var opts transcribeOptions
	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Upload a local recording and print its speaker-attributed transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if opts.maxConcurrency > 0 {
				cfg.Diarization.MaxConcurrency = opts.maxConcurrency
			}
			return transcribeFile(cmd.Context(), cfg, args[0], opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.stream, "stream", false, "print each segment as a JSON line as soon as it is ready")
	cmd.Flags().IntVarP(&opts.maxConcurrency, "max-concurrency", "j", 0, "chunks diarized at once (default from config)")
	cmd.Flags().StringVar(&opts.speaker, "speaker", "", "only print segments with this speaker label")
	return cmd
}

func transcribeFile(ctx context.Context, cfg *Config, path string, opts transcribeOptions, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	cfg.Database.AutoMigrate = true
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	in, err := registerInfra(app)
	if err != nil {
		return err
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		svc, err := buildServices(app.Cfg, in, app.Logger)
		if err != nil {
			return err
		}
		rec, err := svc.clips.Upload(ctx, clip.Upload{
			Filename:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Body:        f,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(out)
		if opts.stream {
			it, err := svc.orchestrator.Stream(ctx, rec.ID)
			if err != nil {
				return err
			}
			return pipeline.ForEach(ctx, pipeline.Filter(pipeline.From(it), opts.keep), func(_ context.Context, s media.Segment) error {
				return enc.Encode(s)
			})
		}

		all, err := svc.orchestrator.Execute(ctx, rec.ID)
		if err != nil {
			return err
		}
		segs, err := pipeline.Collect(ctx, pipeline.Filter(pipeline.FromSlice(all), opts.keep))
		if err != nil {
			return err
		}
		enc.SetIndent("", "  ")
		return enc.Encode(media.Transcript{ClipID: rec.ID, Segments: segs, CreatedAt: rec.CreatedAt})
	})
}
