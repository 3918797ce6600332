package journal

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupStoreMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm over sqlmock: %v", err)
	}
	cleanup := func() { sqlDB.Close() }
	return NewStore(gdb), mock, cleanup
}

func TestGetNoteAbsent(t *testing.T) {
	store, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "daily_notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	note, err := store.GetNote(7, 2025, 3, 14)
	require.NoError(t, err, "absence is not an error")
	assert.Nil(t, note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNoteFound(t *testing.T) {
	store, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "user_id", "year", "month", "day", "text", "return_rate", "profit_amount"}).
		AddRow(int64(3), int64(7), 2025, 3, 14, "bought the dip", "1.5", "-20")
	mock.ExpectQuery(`SELECT (.+) FROM "daily_notes"`).WillReturnRows(rows)

	note, err := store.GetNote(7, 2025, 3, 14)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, uint(7), note.UserID)
	assert.Equal(t, "bought the dip", note.Text)
	require.NotNil(t, note.ProfitAmount)
	assert.Equal(t, "-20", *note.ProfitAmount)
}

func TestUpsertNoteUsesOnConflict(t *testing.T) {
	store, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	// one atomic INSERT ... ON CONFLICT on the owner-day key; no
	// check-then-insert branch, so concurrent saves cannot both insert
	mock.ExpectQuery(`INSERT INTO "daily_notes" (.+) ON CONFLICT \("user_id","year","month","day"\) DO UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	amount := "250"
	note, err := store.UpsertNote(7, 2025, 3, 14, NoteFields{Text: "note", ProfitAmount: &amount})
	require.NoError(t, err)
	assert.Equal(t, uint(42), note.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddImageRequiresSavedNote(t *testing.T) {
	store, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT "id" FROM "daily_notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	img, err := store.AddImage(99, "chart.png", "public/notes/x.png", "", "image/png")
	assert.ErrorIs(t, err, ErrNoteNotSaved)
	assert.Nil(t, img)
	// no INSERT was expected: a failed precondition must leave no orphan row
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddImage(t *testing.T) {
	store, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT "id" FROM "daily_notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`INSERT INTO "note_images"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	img, err := store.AddImage(5, "chart.png", "public/notes/x.png", "public/thumbs/x.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, uint(11), img.ID)
	assert.Equal(t, uint(5), img.NoteID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveImageIdempotent(t *testing.T) {
	store, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM "note_images"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.RemoveImage(12345)
	assert.NoError(t, err, "removing a nonexistent image is not an error at this layer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNoteCascadesImages(t *testing.T) {
	store, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "daily_notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "year", "month", "day"}).
			AddRow(int64(3), int64(7), 2025, 3, 14))
	mock.ExpectQuery(`SELECT (.+) FROM "note_images"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "note_id", "store_path"}).
			AddRow(int64(1), int64(3), "public/notes/a.png").
			AddRow(int64(2), int64(3), "public/notes/b.png"))
	mock.ExpectExec(`DELETE FROM "note_images"`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "daily_notes"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := store.DeleteNote(7, 2025, 3, 14)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNoteAbsentIsNoop(t *testing.T) {
	store, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "daily_notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	removed, err := store.DeleteNote(7, 2025, 3, 14)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotesForMonth(t *testing.T) {
	store, mock, cleanup := setupStoreMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "user_id", "year", "month", "day", "profit_amount"}).
		AddRow(int64(1), int64(7), 2025, 3, 2, "100").
		AddRow(int64(2), int64(7), 2025, 3, 9, "-40")
	mock.ExpectQuery(`SELECT (.+) FROM "daily_notes"`).WillReturnRows(rows)

	notes, err := store.NotesForMonth(7, 2025, 3)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, 2, notes[0].Day)
	assert.Equal(t, 9, notes[1].Day)
}
