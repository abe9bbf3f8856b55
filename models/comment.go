package models

import "time"

// Comment represents a remark left on an image. It is deletable only by its
// author or by the owner of the image it belongs to.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImageID   uint      `gorm:"index;not null" json:"image_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
