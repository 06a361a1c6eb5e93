package db

import (
	"log"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authadapters "blog_server/internal/feature/auth/adapters"
	authentity "blog_server/internal/feature/auth/domain/entity"
	postadapters "blog_server/internal/feature/posts/adapters"
)

// OpenDB opens the application database. When DATABASE_URL is set it connects
// to PostgreSQL (retrying while the database comes up); otherwise it falls
// back to a local SQLite file, which is what development and tests use.
func OpenDB() *gorm.DB {
	cfg := &gorm.Config{TranslateError: true}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		path := os.Getenv("BLOG_DB_PATH")
		if path == "" {
			path = "./blog.db"
		}
		db, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			log.Fatalf("failed to open sqlite database: %v", err)
		}
		log.Println("USING_SQLITE:", path)
		return db
	}

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(gpostgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	return db
}

// Migrate runs the schema migration for all persisted models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&authentity.User{},
		&authadapters.SessionModel{},
		&postadapters.PostModel{},
	)
}
