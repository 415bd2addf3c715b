package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scribe/errors"
)

// ClaimsKey is the gin context key holding *Claims.
const ClaimsKey = "auth_claims"

// Middleware rejects requests without a valid bearer token. Paths listed in
// skip pass through untouched.
func Middleware(v *Validator, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			abort(c, apperrors.Unauthorized("missing bearer token"))
			return
		}
		claims, err := v.Validate(token)
		if err != nil {
			abort(c, apperrors.Unauthorized("invalid or expired token").WithCause(err))
			return
		}
		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func abort(c *gin.Context, appErr *apperrors.AppError) {
	resp := appErr.ToResponse()
	resp.Error.RequestID = c.GetString("request_id")
	c.AbortWithStatusJSON(appErr.HTTPStatus, resp)
}
