package repo

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// newRepoDB opens a file-backed SQLite database under t.TempDir. With
// migrate=false the schema is left empty so error paths can be exercised.
func newRepoDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Release the file before TempDir cleanup.
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedConversation(t *testing.T, db *gorm.DB, id, userID string, mode domain.Mode, updated time.Time) *domain.Conversation {
	t.Helper()
	c := &domain.Conversation{ID: id, UserID: userID, ProfileID: "p-" + userID, Mode: mode, IsActive: true, CreatedAt: updated, UpdatedAt: updated}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed conversation %s: %v", id, err)
	}
	return c
}
