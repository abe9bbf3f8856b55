package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the uniform error body: {"error": "<message>"}.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error writes a JSON error body with the given status code.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, ErrorResponse{Error: message})
}

// AbortError writes the error body and stops the handler chain. For middleware.
func AbortError(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
