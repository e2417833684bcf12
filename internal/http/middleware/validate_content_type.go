package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireMultipart rejects uploads that are not multipart/form-data before
// the body is parsed.
func RequireMultipart() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		contentType := ctx.GetHeader("Content-Type")

		if !strings.HasPrefix(strings.ToLower(contentType), "multipart/form-data") {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Expected a multipart/form-data upload with an image field",
			})
			return
		}

		ctx.Next()
	}
}
