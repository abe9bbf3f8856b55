package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/config"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/models"
)

const sessionTokenBytes = 32

// NewSessionToken returns a fresh opaque token: 32 random bytes, hex encoded.
func NewSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// MintToken creates and persists a session token for the user with the
// configured TTL. It does not touch any existing tokens; login destroys
// those first to keep a single active session.
func MintToken(db *gorm.DB, userID uint) (*models.Token, error) {
	value, err := NewSessionToken()
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(config.Get().TokenTTLHours) * time.Hour
	token := models.Token{
		Token:     value,
		ExpiresAt: time.Now().Add(ttl),
		UserID:    userID,
	}
	if err := db.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}
