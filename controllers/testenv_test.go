package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/config"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/models"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/routes"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/utils"
)

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "gallery-test")
	if err != nil {
		panic(err)
	}

	os.Setenv("GIN_MODE", "test")
	os.Setenv("LOG_PATH", filepath.Join(tmp, "app.log"))
	os.Setenv("GIN_PATH", "")
	os.Setenv("UPLOAD_DIR", filepath.Join(tmp, "uploads"))
	// Keep the auth group limiter out of the way
	os.Setenv("RATE_LIMIT_PER_MINUTE", "100000")
	// Signup throttling needs Redis; the cooldown would trip without one
	os.Setenv("SIGNUP_ATTEMPT_COOLDOWN_SEC", "-1")

	cfg := config.Load()
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

// newTestDB opens a fresh in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Token{}, &models.Image{}, &models.Comment{}))
	return db
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return routes.SetupRouter(db), db
}

type authResponse struct {
	User struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Token string `json:"token"`
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// signup creates an account through the API and returns its id and token.
func signup(t *testing.T, r *gin.Engine, username, password string) (uint, string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", gin.H{"username": username, "password": password}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp authResponse
	decodeJSON(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.User.ID, resp.Token
}

// seedImage inserts an image row directly, optionally with an explicit id.
func seedImage(t *testing.T, db *gorm.DB, id, userID uint, title string) models.Image {
	t.Helper()
	img := models.Image{
		ID:         id,
		Title:      title,
		FileName:   title + ".png",
		StoredName: uuid.NewString() + ".png",
		Path:       filepath.Join(os.TempDir(), "missing.png"),
		MimeType:   "image/png",
		Size:       4,
		UserID:     userID,
	}
	require.NoError(t, db.Create(&img).Error)
	return img
}

func seedComment(t *testing.T, db *gorm.DB, imageID, userID uint, body string) models.Comment {
	t.Helper()
	cmt := models.Comment{ImageID: imageID, UserID: userID, Body: body}
	require.NoError(t, db.Create(&cmt).Error)
	return cmt
}
