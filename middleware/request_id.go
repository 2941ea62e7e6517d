package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID stamps every request with an X-Request-Id for log correlation.
// A caller-supplied id is kept so the SPA can trace its own calls.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set("request_id", id)
		ctx.Writer.Header().Set("X-Request-Id", id)
		ctx.Next()
	}
}
