package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/config"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/middleware"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/models"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/utils"
)

// AuthController handles signup, login, and logout with database backed
// bearer tokens.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup creates a new account and issues a session token.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Username and password are required")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, "Username and password are required")
		return
	}

	// Per-IP signup throttling; every check fails open on Redis errors
	ip := ctx.ClientIP()
	if utils.SignupIsBanned(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, "Too many requests")
		return
	}
	if !utils.SignupCooldownTry(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, "Too many requests")
		return
	}
	if !utils.SignupDailyLimitCheck(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, "Too many requests")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, "Username already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Sugar.Errorf("signup username lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Sugar.Errorf("password hashing failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Sugar.Errorf("user creation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		fails := utils.SignupFailRecord(ip)
		if fails >= maxInt(config.Get().SignupFailedMaxPerIPPerHour, 1) {
			utils.SignupBan(ip)
		}
		return
	}

	utils.SignupDailyIncrement(ip)

	token, err := utils.MintToken(a.db, user.ID)
	if err != nil {
		utils.Sugar.Errorf("token creation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user":  user.Summary(),
		"token": token.Token,
	})
}

// Login verifies credentials, destroys any existing tokens for the user, and
// mints a fresh one. The "user not found" and "wrong password" responses are
// identical so usernames cannot be enumerated.
func (a *AuthController) Login(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Username and password are required")
		return
	}
	if req.Username == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, "Username and password are required")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Sugar.Errorf("login user lookup failed: %v", err)
		}
		utils.Error(ctx, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	// Single active session: purge existing tokens before minting a new one
	if err := a.db.Where("user_id = ?", user.ID).Delete(&models.Token{}).Error; err != nil {
		utils.Sugar.Errorf("token invalidation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := utils.MintToken(a.db, user.ID)
	if err != nil {
		utils.Sugar.Errorf("token creation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":  user.Summary(),
		"token": token.Token,
	})
}

// Logout destroys all tokens belonging to the authenticated user.
func (a *AuthController) Logout(ctx *gin.Context) {
	userID, ok := middleware.AuthUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := a.db.Where("user_id = ?", userID).Delete(&models.Token{}).Error; err != nil {
		utils.Sugar.Errorf("logout token cleanup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
