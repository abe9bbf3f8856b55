package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/middleware"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/models"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/utils"
)

const defaultImageCommentLimit = 10

// ImageController serves image metadata, the stored binary, and the comments
// attached to an image.
type ImageController struct {
	db *gorm.DB
}

// NewImageController creates an ImageController.
func NewImageController(db *gorm.DB) *ImageController {
	return &ImageController{db: db}
}

// GetImage returns the metadata for one image.
func (i *ImageController) GetImage(ctx *gin.Context) {
	imageID := middleware.IDParam(ctx)

	var image models.Image
	if err := i.db.Preload("User").First(&image, imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Image not found")
			return
		}
		utils.Sugar.Errorf("image lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx.JSON(http.StatusOK, image)
}

// GetImageFile streams the stored binary with its recorded MIME type.
func (i *ImageController) GetImageFile(ctx *gin.Context) {
	imageID := middleware.IDParam(ctx)

	var image models.Image
	if err := i.db.First(&image, imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Image not found")
			return
		}
		utils.Sugar.Errorf("image lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if image.MimeType != "" {
		ctx.Header("Content-Type", image.MimeType)
	}
	ctx.File(image.Path)
}

// ListImageComments pages through an image's comments newest-first with an
// exclusive cursor, like the user listing.
func (i *ImageController) ListImageComments(ctx *gin.Context) {
	imageID := middleware.IDParam(ctx)
	limit := middleware.Limit(ctx, defaultImageCommentLimit)

	var image models.Image
	if err := i.db.First(&image, imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Image not found")
			return
		}
		utils.Sugar.Errorf("image lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	q := i.db.Where("image_id = ?", imageID).Order("id DESC").Preload("User")
	if raw := ctx.Query("cursor"); raw != "" {
		if cursor, err := strconv.Atoi(raw); err == nil {
			q = q.Where("id < ?", cursor)
		}
	}

	var comments []models.Comment
	if err := q.Limit(limit + 1).Find(&comments).Error; err != nil {
		utils.Sugar.Errorf("comment listing failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to retrieve comments")
		return
	}

	hasNext := len(comments) > limit
	if hasNext {
		comments = comments[:limit]
	}

	var nextCursor interface{}
	if hasNext {
		nextCursor = comments[len(comments)-1].ID
	}

	ctx.JSON(http.StatusOK, gin.H{
		"comments":   comments,
		"nextCursor": nextCursor,
	})
}

// CreateComment adds a comment to an image on behalf of the authenticated user.
func (i *ImageController) CreateComment(ctx *gin.Context) {
	imageID := middleware.IDParam(ctx)

	userID, ok := middleware.AuthUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Comment body is required")
		return
	}

	body := utils.Sanitize(req.Body)
	if body == "" {
		utils.Error(ctx, http.StatusBadRequest, "Comment body is required")
		return
	}

	var image models.Image
	if err := i.db.First(&image, imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Image not found")
			return
		}
		utils.Sugar.Errorf("image lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	comment := models.Comment{
		ImageID: image.ID,
		UserID:  userID,
		Body:    body,
	}
	if err := i.db.Create(&comment).Error; err != nil {
		utils.Sugar.Errorf("comment creation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := i.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Sugar.Errorf("comment reload failed: %v", err)
	}

	ctx.JSON(http.StatusCreated, comment)
}
