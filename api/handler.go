package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/clip"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/pipeline"
)

// StreamBatchSize is the number of segments per line on the replay stream.
const StreamBatchSize = 10

// Clips is the clip management the handlers depend on.
type Clips interface {
	Upload(ctx context.Context, in clip.Upload) (*clip.Record, error)
	Get(ctx context.Context, id string) (*clip.Record, error)
	Delete(ctx context.Context, id string) error
}

// Transcripts is the transcription orchestration the handlers depend on.
type Transcripts interface {
	Execute(ctx context.Context, clipID string) ([]media.Segment, error)
	Stream(ctx context.Context, clipID string) (pipeline.Iterator[media.Segment], error)
	GetOrTranscribe(ctx context.Context, clipID string) ([]media.Segment, error)
	GetOrTranscribeStream(ctx context.Context, clipID string) (pipeline.Iterator[media.Segment], error)
	Delete(ctx context.Context, clipID string) error
}

// Handler serves the /api routes.
type Handler struct {
	clips       Clips
	transcripts Transcripts
	log         *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(clips Clips, transcripts Transcripts, log *logger.Logger) *Handler {
	return &Handler{clips: clips, transcripts: transcripts, log: log.WithComponent("api")}
}

// Register mounts the routes on rg. limit guards the routes that run the
// models; pass nil for none.
func (h *Handler) Register(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.POST("/audio", h.uploadAudio)
	rg.GET("/audio/:clip_id", h.getAudio)
	rg.DELETE("/audio/:clip_id", h.deleteAudio)
	rg.DELETE("/transcription/:clip_id", h.deleteTranscription)

	heavy := rg.Group("")
	if limit != nil {
		heavy.Use(limit)
	}
	heavy.POST("/transcribe", h.transcribe)
	heavy.POST("/transcribe/stream", h.transcribeStream)
	heavy.GET("/transcription/:clip_id", h.getTranscription)
	heavy.GET("/transcription/stream/:clip_id", h.transcriptionStream)
}
