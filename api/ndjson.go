package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/server/middleware"
)

// NDJSONContentType is the media type of the streaming endpoints.
const NDJSONContentType = "application/x-ndjson"

// lineWriter writes one JSON document per line and flushes after each.
// Headers are sent with the first line.
type lineWriter struct {
	c       *gin.Context
	log     *logger.Logger
	enc     *json.Encoder
	started bool
	lines   int
}

func newLineWriter(c *gin.Context, log *logger.Logger) *lineWriter {
	// Streams outlive the server write timeout.
	rc := http.NewResponseController(c.Writer)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Warn("could not clear write deadline", logger.Fields(logger.FieldError, err.Error()))
	}
	return &lineWriter{c: c, log: log, enc: json.NewEncoder(c.Writer)}
}

func (w *lineWriter) start() {
	if w.started {
		return
	}
	w.started = true
	h := w.c.Writer.Header()
	h.Set("Content-Type", NDJSONContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Accel-Buffering", "no")
	w.c.Status(http.StatusOK)
}

// Write encodes v as one line and flushes it.
func (w *lineWriter) Write(v any) error {
	w.start()
	if err := w.enc.Encode(v); err != nil {
		return err
	}
	w.c.Writer.Flush()
	w.lines++
	return nil
}

// Finish ends the stream. An error before the first line becomes a regular
// error response; after it, a final error line.
func (w *lineWriter) Finish(clipID string, err error) {
	log := w.log.WithContext(w.c.Request.Context())
	if err == nil {
		w.start()
		w.c.Writer.Flush()
		log.Debug("stream finished", logger.Fields(logger.FieldClipID, clipID, "lines", w.lines))
		return
	}
	if errors.Is(err, context.Canceled) || w.c.Request.Context().Err() != nil {
		log.Info("stream client went away", logger.Fields(logger.FieldClipID, clipID, "lines", w.lines))
		return
	}
	log.Error("stream failed", logger.Fields(logger.FieldClipID, clipID, logger.FieldError, err.Error()))
	if !w.started {
		server.RespondWithError(w.c, err)
		return
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	resp := appErr.ToResponse()
	resp.Error.RequestID = w.c.GetString(middleware.RequestIDKey)
	_ = w.Write(resp)
}
