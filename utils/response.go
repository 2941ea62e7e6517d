package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes the success envelope, merging extra fields into {ok:true}.
func OK(ctx *gin.Context, extra gin.H) {
	body := gin.H{"ok": true}
	for k, v := range extra {
		body[k] = v
	}
	ctx.JSON(http.StatusOK, body)
}

// Fail writes the error envelope with the given HTTP status.
func Fail(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"ok": false, "error": message})
}
