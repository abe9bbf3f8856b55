package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/middleware"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/models"
)

func newGuardedEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Token{}))

	r := gin.New()
	r.GET("/protected", middleware.AuthRequired(db), func(ctx *gin.Context) {
		id, _ := middleware.AuthUserID(ctx)
		ctx.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	return r, db
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredHeaderShapes(t *testing.T) {
	r, _ := newGuardedEngine(t)

	for name, header := range map[string]string{
		"missing":      "",
		"no scheme":    "deadbeef",
		"wrong scheme": "Basic deadbeef",
		"empty token":  "Bearer ",
	} {
		w := get(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String(), name)
	}
}

func TestAuthRequiredUnknownToken(t *testing.T) {
	r, _ := newGuardedEngine(t)

	w := get(r, "Bearer "+uuid.NewString())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())
}

func TestAuthRequiredValidToken(t *testing.T) {
	r, db := newGuardedEngine(t)
	user := models.User{Username: "amy", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	token := models.Token{Token: "aa11", ExpiresAt: time.Now().Add(time.Hour), UserID: user.ID}
	require.NoError(t, db.Create(&token).Error)

	w := get(r, "Bearer aa11")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id"`)
}

func TestAuthRequiredExpiredTokenCleanup(t *testing.T) {
	r, db := newGuardedEngine(t)
	user := models.User{Username: "ben", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	token := models.Token{Token: "bb22", ExpiresAt: time.Now().Add(-time.Second), UserID: user.ID}
	require.NoError(t, db.Create(&token).Error)

	w := get(r, "Bearer bb22")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Token expired"}`, w.Body.String())

	var count int64
	require.NoError(t, db.Model(&models.Token{}).Count(&count).Error)
	assert.Zero(t, count)
}
