package models

import "time"

// DailyNote is one journal entry per owner per calendar day. The composite
// unique index is what makes the upsert safe under concurrent writers; the
// application never sequences writes itself.
//
// ReturnRate and ProfitAmount are nullable decimal strings: NULL means the
// field was never entered, which must stay distinguishable from "0".
type DailyNote struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint        `gorm:"not null;uniqueIndex:idx_owner_day,priority:1"`
	Year         int         `gorm:"not null;uniqueIndex:idx_owner_day,priority:2"`
	Month        int         `gorm:"not null;uniqueIndex:idx_owner_day,priority:3"`
	Day          int         `gorm:"not null;uniqueIndex:idx_owner_day,priority:4"`
	Text         string      `gorm:"type:text"`
	ReturnRate   *string     `gorm:"size:64"`
	ProfitAmount *string     `gorm:"size:64"`
	Images       []NoteImage `gorm:"foreignKey:NoteID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
