package api

import (
	"context"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/pipeline"
	"github.com/kbukum/scribe/server"
)

// SegmentView is the compact segment shape of the batch endpoints.
type SegmentView struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// TranscriptionResponse is the body of the batch endpoints.
type TranscriptionResponse struct {
	Segments []SegmentView `json:"segments"`
}

type segmentLine struct {
	Segment media.Segment `json:"segment"`
}

type segmentsLine struct {
	Segments []media.Segment `json:"segments"`
}

func newTranscriptionResponse(segs []media.Segment) TranscriptionResponse {
	views := make([]SegmentView, len(segs))
	for i, s := range segs {
		views[i] = SegmentView{Speaker: s.SpeakerLabel, Start: s.Start, End: s.End, Text: s.Text}
	}
	return TranscriptionResponse{Segments: views}
}

func clipIDQuery(c *gin.Context) (string, bool) {
	id := c.Query("clip_id")
	if id == "" {
		server.RespondWithError(c, apperrors.InvalidInput("clip_id", "query parameter clip_id is required"))
		return "", false
	}
	return id, true
}

func (h *Handler) transcribe(c *gin.Context) {
	id, ok := clipIDQuery(c)
	if !ok {
		return
	}
	segs, err := h.transcripts.Execute(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, newTranscriptionResponse(segs))
}

func (h *Handler) getTranscription(c *gin.Context) {
	segs, err := h.transcripts.GetOrTranscribe(c.Request.Context(), c.Param("clip_id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, newTranscriptionResponse(segs))
}

func (h *Handler) deleteTranscription(c *gin.Context) {
	if err := h.transcripts.Delete(c.Request.Context(), c.Param("clip_id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) transcribeStream(c *gin.Context) {
	id, ok := clipIDQuery(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	it, err := h.transcripts.Stream(ctx, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	w := newLineWriter(c, h.log)
	err = pipeline.Drain(ctx, it, func(_ context.Context, s media.Segment) error {
		return w.Write(segmentLine{Segment: s})
	})
	w.Finish(id, err)
}

func (h *Handler) transcriptionStream(c *gin.Context) {
	id := c.Param("clip_id")
	ctx := c.Request.Context()
	it, err := h.transcripts.GetOrTranscribeStream(ctx, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	w := newLineWriter(c, h.log)
	batches := pipeline.Batch(pipeline.From(it), StreamBatchSize)
	err = pipeline.ForEach(ctx, batches, func(_ context.Context, segs []media.Segment) error {
		return w.Write(segmentsLine{Segments: segs})
	})
	w.Finish(id, err)
}
