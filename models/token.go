package models

import "time"

// Token is an opaque bearer credential. A user holds at most one valid token
// at a time: login destroys all prior tokens before minting a new one, and
// expired tokens are deleted the first time they are presented.
type Token struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
