package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/clip"
	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/server"
)

func (h *Handler) uploadAudio(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("file", "multipart field \"file\" is required").WithCause(err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("file", "upload could not be read").WithCause(err))
		return
	}
	defer f.Close()

	rec, err := h.clips.Upload(c.Request.Context(), clip.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.log.WithContext(c.Request.Context()).Info("clip uploaded", logger.Fields(
		logger.FieldClipID, rec.ID, "size_bytes", rec.SizeBytes,
	))
	server.RespondCreated(c, rec)
}

func (h *Handler) getAudio(c *gin.Context) {
	rec, err := h.clips.Get(c.Request.Context(), c.Param("clip_id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, rec)
}

func (h *Handler) deleteAudio(c *gin.Context) {
	if err := h.clips.Delete(c.Request.Context(), c.Param("clip_id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}
