package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/server/middleware"
)

// RespondWithError renders err as the standard error envelope. Errors that
// are not an *apperrors.AppError become a generic 500.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	resp := appErr.ToResponse()
	resp.Error.RequestID = c.GetString(middleware.RequestIDKey)
	c.AbortWithStatusJSON(appErr.HTTPStatus, resp)
}

// RespondOK sends a 200 response with body.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// RespondCreated sends a 201 response with body.
func RespondCreated(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
