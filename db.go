package main

import (
	"os"
	"strings"

	"github.com/sellintostrength/speculator/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		logger.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatalw("failed to connect postgres database", "error", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Ensure the roles master table exists first and seed it so users FK can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			logger.Warnw("migration warning (roles)", "error", err)
		}
	}
	seedRoles()

	// Now migrate the rest (users will get FK to roles)
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			logger.Warnw("migration warning (users)", "error", err)
		}
		if err := db.AutoMigrate(&models.DailyNote{}); err != nil {
			logger.Warnw("migration warning (daily_notes)", "error", err)
		}
		if err := db.AutoMigrate(&models.NoteImage{}); err != nil {
			logger.Warnw("migration warning (note_images)", "error", err)
		}
		if err := db.AutoMigrate(&models.Resource{}); err != nil {
			logger.Warnw("migration warning (resources)", "error", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			logger.Warnw("migration warning (refresh_tokens)", "error", err)
		}
	}

	// Ensure note_images -> daily_notes cascade FK exists (in case the table
	// predates the constraint). Images must not outlive their note.
	if shouldMigrate {
		if err := ensureNoteImageFK(); err != nil {
			logger.Warnw("ensuring note_images->daily_notes FK failed", "error", err)
		}
	}
	seedDB()
}

// ensureNoteImageFK adds the note_id index and ON DELETE CASCADE constraint if they are missing.
func ensureNoteImageFK() error {
	// 1. Index on note_id (idempotent)
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_note_images_note_id ON note_images(note_id)`).Error; err != nil {
		return err
	}
	// 2. Check if FK already present
	type cnt struct{ N int }
	var c cnt
	fkCheckSQL := `SELECT count(*) AS n
		FROM pg_constraint ct
		JOIN pg_class rel ON rel.oid = ct.conrelid
		WHERE rel.relname = 'note_images' AND ct.contype = 'f'
		  AND pg_get_constraintdef(ct.oid) ILIKE '%note_id%' AND pg_get_constraintdef(ct.oid) ILIKE '%daily_notes%'`
	if err := db.Raw(fkCheckSQL).Scan(&c).Error; err != nil {
		return err
	}
	if c.N == 0 {
		if err := db.Exec(`ALTER TABLE note_images
			ADD CONSTRAINT fk_note_images_daily_notes
			FOREIGN KEY (note_id) REFERENCES daily_notes(id)
			ON UPDATE CASCADE ON DELETE CASCADE`).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedRoles() {
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

func seedDB() {
	seedRoles()

	// Seed the first administrator account so someone can log in and create
	// the real users. Login info follows the same rule as every account:
	// username is the email, initial password is the phone's last 4 digits.
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@example.com"
	}
	adminPhone := os.Getenv("ADMIN_PHONE")
	if adminPhone == "" {
		adminPhone = "010-0000-1234"
	}
	var count int64
	db.Model(&models.User{}).Where("username = ?", adminEmail).Count(&count)
	if count == 0 {
		user, password, err := CreateUser("Administrator", adminEmail, adminPhone, "administrator")
		if err != nil {
			logger.Warnw("failed to seed admin user", "error", err)
		} else {
			logger.Infow("seeded admin user", "username", user.Username, "password", password)
		}
	}
	// Ensure upload directory exists
	ensureUploadBase()
}

// ensureUploadBase creates the base uploads directory and its note/resource subdirs.
func ensureUploadBase() {
	base := uploadBaseDir()
	for _, dir := range []string{base, base + "/notes", base + "/thumbs", base + "/resources"} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Warnw("failed to create upload dir", "dir", dir, "error", err)
		}
	}
}

// uploadBaseDir returns the base directory for local uploads (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}
