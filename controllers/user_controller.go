package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/config"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/middleware"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/models"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/utils"
)

const (
	defaultUserLimit  = 20
	defaultImageLimit = 1
)

// UserController lists users and manages their image galleries.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a UserController.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// ListUsers returns users newest-first with cursor pagination. The cursor is
// exclusive here (id < cursor) and the next cursor is the id of the last
// returned row; a cursor that does not parse is ignored.
func (u *UserController) ListUsers(ctx *gin.Context) {
	limit := middleware.Limit(ctx, defaultUserLimit)

	q := u.db.Model(&models.User{}).Order("id DESC")
	if raw := ctx.Query("cursor"); raw != "" {
		if cursor, err := strconv.Atoi(raw); err == nil {
			q = q.Where("id < ?", cursor)
		}
	}

	var users []models.User
	if err := q.Limit(limit + 1).Find(&users).Error; err != nil {
		utils.Sugar.Errorf("user listing failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	hasNext := len(users) > limit
	if hasNext {
		users = users[:limit]
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, user.Summary())
	}

	var nextCursor interface{}
	if hasNext {
		nextCursor = users[len(users)-1].ID
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users":      summaries,
		"nextCursor": nextCursor,
	})
}

// GetUser returns a single user's public summary.
func (u *UserController) GetUser(ctx *gin.Context) {
	userID := middleware.IDParam(ctx)

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "User not found")
			return
		}
		utils.Sugar.Errorf("user lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx.JSON(http.StatusOK, user.Summary())
}

// ListUserImages pages through a user's images newest-first (by id).
//
// Two modes:
//   - latest=true returns only the most recent image plus navigation hints.
//   - otherwise standard cursor pagination applies. The cursor comparison is
//     id <= cursor, so the row at the cursor itself is included again; clients
//     depend on that boundary, do not tighten it to a strict compare.
//
// The prevCursor lookup is intentionally not scoped to the user, matching the
// behavior the frontend was built against.
func (u *UserController) ListUserImages(ctx *gin.Context) {
	userID := middleware.IDParam(ctx)
	limit := middleware.Limit(ctx, defaultImageLimit)

	if ctx.Query("latest") == "true" {
		u.latestImage(ctx, userID)
		return
	}

	q := u.db.Where("user_id = ?", userID).Order("id DESC").Preload("User")
	if raw := ctx.Query("cursor"); raw != "" {
		cursor, err := strconv.Atoi(raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, "Invalid cursor format")
			return
		}
		q = q.Where("id <= ?", cursor)
	}

	var images []models.Image
	if err := q.Limit(limit + 1).Find(&images).Error; err != nil {
		utils.Sugar.Errorf("image listing failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to retrieve images")
		return
	}

	hasNext := len(images) > limit
	result := images
	if hasNext {
		result = images[:limit]
	}

	var nextCursor interface{}
	if hasNext && len(result) > 0 {
		// The cursor is the id of the first excluded row, not the last shown one
		nextCursor = strconv.FormatUint(uint64(images[limit].ID), 10)
	}

	var prevCursor interface{}
	hasPrev := false
	newerCount := int64(0)

	if len(result) > 0 {
		first := result[0]

		if err := u.db.Model(&models.Image{}).
			Where("id > ? AND user_id = ?", first.ID, userID).
			Count(&newerCount).Error; err != nil {
			utils.Sugar.Errorf("newer image count failed: %v", err)
			utils.Error(ctx, http.StatusInternalServerError, "Failed to retrieve images")
			return
		}
		hasPrev = newerCount > 0

		if hasPrev {
			// Unscoped on purpose, see the function comment
			var newer models.Image
			if err := u.db.Where("id > ?", first.ID).Order("id ASC").First(&newer).Error; err == nil {
				prevCursor = strconv.FormatUint(uint64(newer.ID), 10)
			}
		}
	}

	var total int64
	if err := u.db.Model(&models.Image{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Sugar.Errorf("image count failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to retrieve images")
		return
	}

	position := int64(1)
	if len(result) > 0 {
		position = newerCount + 1
	}

	ctx.JSON(http.StatusOK, gin.H{
		"images": result,
		"pagination": gin.H{
			"hasNext":    hasNext,
			"nextCursor": nextCursor,
			"hasPrev":    hasPrev,
			"prevCursor": prevCursor,
			"total":      total,
			"position":   position,
		},
	})
}

// latestImage serves the latest=true mode: the single newest image plus
// whether an older one exists.
func (u *UserController) latestImage(ctx *gin.Context, userID uint) {
	var first models.Image
	err := u.db.Where("user_id = ?", userID).Order("id DESC").Preload("User").First(&first).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "No images found")
			return
		}
		utils.Sugar.Errorf("latest image lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to retrieve images")
		return
	}

	var total int64
	if err := u.db.Model(&models.Image{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Sugar.Errorf("image count failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to retrieve images")
		return
	}

	var next models.Image
	hasNext := false
	var nextCursor interface{}
	err = u.db.Where("id < ? AND user_id = ?", first.ID, userID).Order("id DESC").First(&next).Error
	switch {
	case err == nil:
		hasNext = true
		nextCursor = strconv.FormatUint(uint64(next.ID), 10)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		utils.Sugar.Errorf("next image lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to retrieve images")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"images": []models.Image{first},
		"pagination": gin.H{
			"hasNext":    hasNext,
			"nextCursor": nextCursor,
			"hasPrev":    false,
			"prevCursor": nil,
			"total":      total,
			"position":   1,
		},
	})
}

// UploadImage stores a multipart image for the authenticated user. Users can
// only upload into their own gallery.
func (u *UserController) UploadImage(ctx *gin.Context) {
	userID := middleware.IDParam(ctx)

	authID, ok := middleware.AuthUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if authID != userID {
		utils.Error(ctx, http.StatusForbidden, "Forbidden: You can only upload images for your own account")
		return
	}

	title := utils.Sanitize(ctx.PostForm("title"))
	if title == "" {
		utils.Error(ctx, http.StatusUnprocessableEntity, "Image title is required")
		return
	}

	file, header, err := ctx.Request.FormFile("image")
	if err != nil {
		utils.Error(ctx, http.StatusUnprocessableEntity, "Image file is required")
		return
	}
	defer file.Close()

	cfg := config.Get()
	maxSize := int64(cfg.UploadMaxSizeMB) * 1024 * 1024
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusUnprocessableEntity, "Image file is too large")
		return
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		utils.Sugar.Errorf("upload directory creation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	storedName := uuid.NewString() + filepath.Ext(header.Filename)
	dstPath := filepath.Join(cfg.UploadDir, storedName)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Sugar.Errorf("upload file creation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		if err != nil {
			utils.Sugar.Errorf("upload write failed: %v", err)
			utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
			return
		}
		utils.Error(ctx, http.StatusUnprocessableEntity, fmt.Sprintf("Image file exceeds %dMB", cfg.UploadMaxSizeMB))
		return
	}

	image := models.Image{
		Title:      title,
		FileName:   filepath.Base(header.Filename),
		StoredName: storedName,
		Path:       dstPath,
		MimeType:   header.Header.Get("Content-Type"),
		Size:       written,
		UserID:     userID,
	}
	if err := u.db.Create(&image).Error; err != nil {
		_ = os.Remove(dstPath)
		utils.Sugar.Errorf("image record creation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := u.db.Preload("User").First(&image, image.ID).Error; err != nil {
		utils.Sugar.Errorf("image reload failed: %v", err)
	}

	ctx.JSON(http.StatusCreated, image)
}
