package model

import (
	"time"

	"gorm.io/gorm"
)

// File is an uploaded document owned by a user. URL is the storage locator of
// the payload, not a user-facing address. At most one file per user is active
// at a time.
type File struct {
	gorm.Model
	UserID     uint      `json:"user_id" gorm:"index;not null"`
	Name       string    `json:"name" gorm:"not null"`
	URL        string    `json:"url" gorm:"not null"`
	Type       string    `json:"type"`
	IsActive   bool      `json:"is_active" gorm:"default:false"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// WebsiteURL is an ingestible web page owned by a user. Same single-active
// rule as File, tracked independently per kind.
type WebsiteURL struct {
	gorm.Model
	UserID   uint      `json:"user_id" gorm:"index;not null"`
	URL      string    `json:"url" gorm:"not null"`
	IsActive bool      `json:"is_active" gorm:"default:false"`
	AddedAt  time.Time `json:"added_at"`
}
