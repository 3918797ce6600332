package models

import "time"

// Role is a master table of privilege levels (administrator, user).
// Elevated access is a claim on the user row, not a constant in code.
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}
