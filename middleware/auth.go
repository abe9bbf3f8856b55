package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/models"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/utils"
)

// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
const ContextUserIDKey = "user_id"

// AuthRequired validates the bearer token against the tokens table.
//
// Expired tokens are deleted the moment they are presented, so a second use
// of the same token reports "Invalid token" rather than "Token expired".
// A database failure during lookup is treated as unauthorized (fails closed).
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.AbortError(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			utils.AbortError(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var record models.Token
		if err := db.Where("token = ?", tokenString).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.AbortError(ctx, http.StatusUnauthorized, "Invalid token")
				return
			}
			if utils.Sugar != nil {
				utils.Sugar.Errorf("token lookup failed: %v", err)
			}
			utils.AbortError(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if time.Now().After(record.ExpiresAt) {
			// Clean up the expired token before rejecting
			if err := db.Delete(&record).Error; err != nil && utils.Sugar != nil {
				utils.Sugar.Errorf("expired token cleanup failed: %v", err)
			}
			utils.AbortError(ctx, http.StatusUnauthorized, "Token expired")
			return
		}

		ctx.Set(ContextUserIDKey, record.UserID)
		ctx.Next()
	}
}

// AuthUserID returns the authenticated user id stored by AuthRequired.
func AuthUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
