package models

import (
	"time"
)

// User is a journal owner. Accounts are created by an administrator and are
// never edited or deleted afterwards; Username doubles as the login handle
// (the user's email address).
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Username       string `gorm:"size:255;not null;unique"`
	DisplayName    string `gorm:"size:255;not null"`
	Email          string `gorm:"size:255"`
	Phone          string `gorm:"size:64"`
	HashedPassword []byte `gorm:"not null"`
	Notes          []DailyNote
	RoleID         *uint `gorm:"index"`
	Role           Role  `gorm:"foreignKey:RoleID;references:ID"`
}
