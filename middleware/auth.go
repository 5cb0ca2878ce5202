package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gsinghjay/gpt-character-gen/utils"
)

// APIKeyHeader is the header that must carry the shared secret.
const APIKeyHeader = "X-API-Key"

// APIKeyRequired guards the character API with a single static shared secret.
// Missing header or any mismatch answers 401; the comparison is constant-time
// so the secret cannot be probed byte by byte.
func APIKeyRequired(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		supplied := ctx.GetHeader(APIKeyHeader)
		if supplied == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "missing API key in X-API-Key header")
			ctx.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(secret)) != 1 {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid API key")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
