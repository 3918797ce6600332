package models

import "time"

// NoteImage is an image attached to a DailyNote. The note must already be
// persisted before an image can attach; images are owned exclusively by
// their note and go away with it.
type NoteImage struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NoteID      uint   `gorm:"index;not null"`
	FileName    string `gorm:"size:255;not null"`
	StorePath   string `gorm:"column:store_path;size:512"` // public relative path (e.g. public/notes/xxx.jpg)
	ThumbPath   string `gorm:"column:thumb_path;size:512"`
	ContentType string `gorm:"size:128"`
}
