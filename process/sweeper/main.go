// Command sweeper reconciles the local upload store with the database.
// Image upload and note save are not transactionally linked, so a crash can
// leave files on disk with no note_images or resources row. The sweeper
// finds those orphans, reports them, and with --remove deletes them. With
// --watch it stays running and checks new files as they appear.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sellintostrength/speculator/models"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var sweptDirs = []string{"notes", "thumbs", "resources"}

var (
	remove bool
	minAge time.Duration
)

func main() {
	watch := flag.Bool("watch", false, "keep watching for new files after the initial scan")
	flag.BoolVar(&remove, "remove", false, "delete orphaned files instead of only reporting them")
	flag.DurationVar(&minAge, "min-age", 10*time.Minute, "leave files younger than this alone (may still be mid-upload)")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	base := uploadBaseDir()

	sweepAll(db, base)
	if *watch {
		if err := watchDirs(db, base); err != nil {
			log.Fatalf("watch: %v", err)
		}
	}
}

func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}

func sweepAll(db *gorm.DB, base string) {
	var checked, orphans int
	for _, sub := range sweptDirs {
		dir := filepath.Join(base, sub)
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Printf("skip %s: %v", dir, err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			checked++
			if checkFile(db, base, sub, e.Name()) {
				orphans++
			}
		}
	}
	log.Printf("sweep done: %d files checked, %d orphans", checked, orphans)
}

// checkFile reports whether the file is an orphan, removing it when allowed.
func checkFile(db *gorm.DB, base, sub, name string) bool {
	full := filepath.Join(base, sub, name)
	ok, err := referenced(db, sub, name)
	if err != nil {
		log.Printf("lookup %s: %v", full, err)
		return false
	}
	if ok {
		return false
	}
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) < minAge {
		// too fresh to judge: the DB row may not be committed yet
		return false
	}
	if remove {
		if err := os.Remove(full); err != nil {
			log.Printf("remove %s: %v", full, err)
		} else {
			log.Printf("removed orphan %s", full)
		}
	} else {
		log.Printf("orphan %s", full)
	}
	return true
}

// referenced checks whether a stored file still has a database row pointing
// at it.
func referenced(db *gorm.DB, sub, name string) (bool, error) {
	storePath := "public/" + sub + "/" + name
	var cnt int64
	var err error
	switch sub {
	case "resources":
		err = db.Model(&models.Resource{}).Where("store_path = ?", storePath).Count(&cnt).Error
	case "thumbs":
		err = db.Model(&models.NoteImage{}).Where("thumb_path = ?", storePath).Count(&cnt).Error
	default:
		err = db.Model(&models.NoteImage{}).Where("store_path = ?", storePath).Count(&cnt).Error
	}
	return cnt > 0, err
}

// watchDirs keeps watching the upload dirs and re-checks files once their
// create events have settled.
func watchDirs(db *gorm.DB, base string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	for _, sub := range sweptDirs {
		if err := w.Add(filepath.Join(base, sub)); err != nil {
			return err
		}
	}
	log.Printf("Watching %s (debounced) ...", base)

	// simple debounce map of pending files
	pending := map[string]time.Time{}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				pending[ev.Name] = time.Now()
			}
		case <-ticker.C:
			now := time.Now()
			for full, seen := range pending {
				if now.Sub(seen) < minAge {
					continue
				}
				sub := filepath.Base(filepath.Dir(full))
				checkFile(db, base, sub, filepath.Base(full))
				delete(pending, full)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}
