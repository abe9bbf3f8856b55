package models

import "time"

// Image represents an uploaded picture. The binary lives on disk under the
// configured upload directory; the row keeps the file metadata.
type Image struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	StoredName string    `gorm:"size:255;not null" json:"stored_name"`
	Path       string    `gorm:"size:1024;not null" json:"-"`
	MimeType   string    `gorm:"size:128" json:"mime_type"`
	Size       int64     `json:"size"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Comments   []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
