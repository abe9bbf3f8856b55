package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/utils"
)

const (
	// ContextIDParamKey stores the validated :id path parameter.
	ContextIDParamKey = "validated_id"
	// ContextLimitKey stores the validated limit query parameter.
	ContextLimitKey = "validated_limit"
)

// ValidateIDParam ensures the :id path parameter is a positive integer and
// stores the parsed value in the context.
func ValidateIDParam() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw := ctx.Param("id")
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			utils.AbortError(ctx, http.StatusBadRequest, "Invalid id parameter")
			return
		}
		ctx.Set(ContextIDParamKey, uint(id))
		ctx.Next()
	}
}

// ValidatePagination checks the limit query parameter when present. Cursor
// format is checked inside the handlers because the two list endpoints treat
// a malformed cursor differently.
func ValidatePagination(defaultLimit int) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		limit := defaultLimit
		if raw := ctx.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				utils.AbortError(ctx, http.StatusBadRequest, "Limit must be a positive integer")
				return
			}
			limit = n
		}
		ctx.Set(ContextLimitKey, limit)
		ctx.Next()
	}
}

// IDParam returns the path id stored by ValidateIDParam.
func IDParam(ctx *gin.Context) uint {
	value, _ := ctx.Get(ContextIDParamKey)
	id, _ := value.(uint)
	return id
}

// Limit returns the page size stored by ValidatePagination, falling back to
// the given default when the middleware did not run.
func Limit(ctx *gin.Context, fallback int) int {
	value, exists := ctx.Get(ContextLimitKey)
	if !exists {
		return fallback
	}
	limit, ok := value.(int)
	if !ok {
		return fallback
	}
	return limit
}
