package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/middleware"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/models"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/utils"
)

// CommentController lists, fetches, and deletes comments. Deletion is gated
// on ownership: only the comment's author or the image's owner may delete.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a CommentController.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// ListComments returns every comment, newest first.
func (c *CommentController) ListComments(ctx *gin.Context) {
	var comments []models.Comment
	if err := c.db.Order("created_at DESC").Preload("User").Find(&comments).Error; err != nil {
		utils.Sugar.Errorf("comment listing failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to retrieve comments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"comments": comments})
}

// GetComment returns a single comment by id.
func (c *CommentController) GetComment(ctx *gin.Context) {
	commentID := middleware.IDParam(ctx)

	var comment models.Comment
	if err := c.db.Preload("User").First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Comment not found")
			return
		}
		utils.Sugar.Errorf("comment lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to retrieve comment")
		return
	}

	ctx.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment when the requester is its author or owns
// the image it belongs to. A comment whose image no longer exists is a 404,
// not a silent delete.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	commentID := middleware.IDParam(ctx)

	userID, ok := middleware.AuthUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Comment not found")
			return
		}
		utils.Sugar.Errorf("comment lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to delete comment")
		return
	}

	var image models.Image
	if err := c.db.First(&image, comment.ImageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Image not found")
			return
		}
		utils.Sugar.Errorf("image lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to delete comment")
		return
	}

	if comment.UserID != userID && image.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, "You do not have permission to delete this comment")
		return
	}

	if err := c.db.Delete(&comment).Error; err != nil {
		utils.Sugar.Errorf("comment deletion failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Failed to delete comment")
		return
	}

	ctx.Status(http.StatusNoContent)
}
