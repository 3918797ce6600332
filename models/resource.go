package models

import "time"

// Resource is a shared library entry (PDF study material). Visible to every
// authenticated user; deletable only by the uploader.
type Resource struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"size:1024"`
	StorePath   string `gorm:"column:store_path;size:512;not null"`
	ContentType string `gorm:"size:128"`
	FileSize    int64  `gorm:"not null"`
	UploadedBy  uint   `gorm:"index;not null"`
	Uploader    User   `gorm:"foreignKey:UploadedBy;references:ID"`
}
