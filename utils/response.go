package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the uniform structure for API error bodies. Successful
// responses return the resource itself; only failures get an envelope.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error writes a JSON error body with the given HTTP status. Message must be
// a short public string; upstream error detail belongs in the logs only.
func Error(ctx *gin.Context, status int, code int, message string) {
	ctx.JSON(status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
