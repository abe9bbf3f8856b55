package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/models"
)

func TestCommentsRequireAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/api/comments", "/api/comments/1"} {
		w := doJSON(t, r, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestListAndGetComments(t *testing.T) {
	r, db := newTestRouter(t)
	ownerID, token := signup(t, r, "sam", "secret-1")
	img := seedImage(t, db, 40, ownerID, "sunset")
	cmt := seedComment(t, db, img.ID, ownerID, "nice colors")

	w := doJSON(t, r, http.MethodGet, "/api/comments", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Comments []models.Comment `json:"comments"`
	}
	decodeJSON(t, w, &list)
	require.Len(t, list.Comments, 1)
	assert.Equal(t, "nice colors", list.Comments[0].Body)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/comments/%d", cmt.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/comments/999", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Comment not found"}`, w.Body.String())
}

func TestDeleteCommentAuthorization(t *testing.T) {
	r, db := newTestRouter(t)
	ownerID, ownerToken := signup(t, r, "tina", "secret-1")
	authorID, authorToken := signup(t, r, "ulric", "secret-1")
	_, strangerToken := signup(t, r, "vera", "secret-1")

	img := seedImage(t, db, 50, ownerID, "harbor")

	// The comment's author may delete it
	cmt := seedComment(t, db, img.ID, authorID, "by author")
	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", cmt.ID), nil, authorToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	// So may the image's owner
	cmt = seedComment(t, db, img.ID, authorID, "for owner")
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", cmt.ID), nil, ownerToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Anyone else may not
	cmt = seedComment(t, db, img.ID, authorID, "for nobody")
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", cmt.ID), nil, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteCommentDanglingImage(t *testing.T) {
	r, db := newTestRouter(t)
	ownerID, token := signup(t, r, "will", "secret-1")
	img := seedImage(t, db, 60, ownerID, "doomed")
	cmt := seedComment(t, db, img.ID, ownerID, "orphaned soon")

	require.NoError(t, db.Delete(&img).Error)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", cmt.ID), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Image not found"}`, w.Body.String())
}

func TestDeleteCommentNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	_, token := signup(t, r, "xena", "secret-1")

	w := doJSON(t, r, http.MethodDelete, "/api/comments/12345", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Comment not found"}`, w.Body.String())
}

func TestCreateAndListImageComments(t *testing.T) {
	r, db := newTestRouter(t)
	ownerID, token := signup(t, r, "yuri", "secret-1")
	img := seedImage(t, db, 70, ownerID, "mountain")

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/images/%d/comments", img.ID), gin.H{"body": "great shot"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Comment
	decodeJSON(t, w, &created)
	assert.Equal(t, "great shot", created.Body)
	assert.Equal(t, img.ID, created.ImageID)

	// HTML is stripped from bodies
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/images/%d/comments", img.ID), gin.H{"body": "<script>alert(1)</script>hi"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	decodeJSON(t, w, &created)
	assert.Equal(t, "hi", created.Body)

	// Empty body is rejected
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/images/%d/comments", img.ID), gin.H{"body": ""}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing image is a 404
	w = doJSON(t, r, http.MethodPost, "/api/images/999/comments", gin.H{"body": "ghost"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/images/%d/comments", img.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Comments []models.Comment `json:"comments"`
	}
	decodeJSON(t, w, &list)
	assert.Len(t, list.Comments, 2)
}

func TestGetImage(t *testing.T) {
	r, db := newTestRouter(t)
	ownerID, _ := signup(t, r, "zane", "secret-1")
	img := seedImage(t, db, 80, ownerID, "bridge")

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/images/%d", img.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Image
	decodeJSON(t, w, &got)
	assert.Equal(t, "bridge", got.Title)
	assert.Equal(t, ownerID, got.UserID)

	w = doJSON(t, r, http.MethodGet, "/api/images/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
