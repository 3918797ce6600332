package journal

import (
	"errors"
	"fmt"

	"github.com/sellintostrength/speculator/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence accessor for daily notes and their images. It is
// the only code that touches the notes tables; handlers go through it.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// NoteFields carries the mutable part of a note for an upsert. Nil rate or
// amount means "not entered", distinct from a literal "0".
type NoteFields struct {
	Text         string
	ReturnRate   *string
	ProfitAmount *string
}

// GetNote returns the unique note for the owner-day key, or nil when no note
// has been saved for that day. Absence is not an error.
func (s *Store) GetNote(ownerID uint, year, month, day int) (*models.DailyNote, error) {
	var note models.DailyNote
	err := s.db.Where("user_id = ? AND year = ? AND month = ? AND day = ?", ownerID, year, month, day).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return &note, nil
}

// GetNoteWithImages is GetNote plus the attached image rows.
func (s *Store) GetNoteWithImages(ownerID uint, year, month, day int) (*models.DailyNote, error) {
	var note models.DailyNote
	err := s.db.Preload("Images").
		Where("user_id = ? AND year = ? AND month = ? AND day = ?", ownerID, year, month, day).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return &note, nil
}

// UpsertNote inserts or updates the note for the owner-day key in one atomic
// statement. The idx_owner_day unique index plus ON CONFLICT is what keeps
// two concurrent saves from both inserting; there is no check-then-insert
// branch here.
func (s *Store) UpsertNote(ownerID uint, year, month, day int, fields NoteFields) (*models.DailyNote, error) {
	note := models.DailyNote{
		UserID:       ownerID,
		Year:         year,
		Month:        month,
		Day:          day,
		Text:         fields.Text,
		ReturnRate:   fields.ReturnRate,
		ProfitAmount: fields.ProfitAmount,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "year"}, {Name: "month"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"text", "return_rate", "profit_amount", "updated_at",
		}),
	}).Create(&note).Error
	if err != nil {
		return nil, fmt.Errorf("upsert note: %w", err)
	}
	return &note, nil
}

// DeleteNote removes the note for the owner-day key together with its image
// rows, in one transaction. It returns the removed image records so the
// caller can clean up the stored files after the commit. Deleting an absent
// note is a no-op.
func (s *Store) DeleteNote(ownerID uint, year, month, day int) ([]models.NoteImage, error) {
	var images []models.NoteImage
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var note models.DailyNote
		err := tx.Where("user_id = ? AND year = ? AND month = ? AND day = ?", ownerID, year, month, day).
			First(&note).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("note_id = ?", note.ID).Find(&images).Error; err != nil {
			return err
		}
		if err := tx.Where("note_id = ?", note.ID).Delete(&models.NoteImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&note).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete note: %w", err)
	}
	return images, nil
}

// NoteByID fetches a note row by primary key, nil when absent.
func (s *Store) NoteByID(id uint) (*models.DailyNote, error) {
	var note models.DailyNote
	err := s.db.First(&note, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("note by id: %w", err)
	}
	return &note, nil
}

// AddImage attaches an uploaded image to an existing note. The note must be
// saved first: attaching to an unknown note id fails with ErrNoteNotSaved
// and leaves no image row behind.
func (s *Store) AddImage(noteID uint, fileName, storePath, thumbPath, contentType string) (*models.NoteImage, error) {
	var note models.DailyNote
	err := s.db.Select("id").First(&note, noteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoteNotSaved
	}
	if err != nil {
		return nil, fmt.Errorf("add image: %w", err)
	}
	img := models.NoteImage{
		NoteID:      noteID,
		FileName:    fileName,
		StorePath:   storePath,
		ThumbPath:   thumbPath,
		ContentType: contentType,
	}
	if err := s.db.Create(&img).Error; err != nil {
		return nil, fmt.Errorf("add image: %w", err)
	}
	return &img, nil
}

// GetImage fetches an image row by id, nil when absent.
func (s *Store) GetImage(imageID uint) (*models.NoteImage, error) {
	var img models.NoteImage
	err := s.db.First(&img, imageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &img, nil
}

// RemoveImage deletes an image row. Removing a nonexistent id is not an
// error at this layer; callers that care fetch the row first.
func (s *Store) RemoveImage(imageID uint) error {
	if err := s.db.Delete(&models.NoteImage{}, imageID).Error; err != nil {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// NotesForMonth fetches all of an owner's notes for one month in a single
// pass, ordered by day. This is the aggregator's read path.
func (s *Store) NotesForMonth(ownerID uint, year, month int) ([]models.DailyNote, error) {
	var notes []models.DailyNote
	err := s.db.Where("user_id = ? AND year = ? AND month = ?", ownerID, year, month).
		Order("day").Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("notes for month: %w", err)
	}
	return notes, nil
}
