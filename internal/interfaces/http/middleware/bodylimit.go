package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitefund/backend/internal/interfaces/http/dto"
)

// DefaultMaxBodySize bounds JSON request bodies. Receipt and invoice
// uploads use the larger DefaultMaxUploadSize on their routes.
const (
	DefaultMaxBodySize   int64 = 1 << 20  // 1 MiB
	DefaultMaxUploadSize int64 = 10 << 20 // 10 MiB
)

// BodyLimit rejects requests whose declared Content-Length exceeds maxBytes
// and caps the reader so chunked bodies cannot exceed it either
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeInvalidInput, "Request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
