// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chainacademy/coursegate/internal/database"
	"github.com/chainacademy/coursegate/internal/models"
)

// fakeClock lets tests control time instead of sleeping through expirations.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func (c *fakeClock) AdvanceDays(days int) {
	c.now = c.now.AddDate(0, 0, days)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Each test gets its own named in-memory database shared across the pool.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		database.Close(db)
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, wallet string) *models.User {
	t.Helper()

	user := &models.User{Username: username}
	if wallet != "" {
		user.WalletAddress = &wallet
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestCreator(t *testing.T, db *gorm.DB, username string, wallet string) *models.User {
	t.Helper()

	user := &models.User{Username: username, IsCreator: true}
	if wallet != "" {
		user.WalletAddress = &wallet
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test creator: %v", err)
	}
	return user
}

func createTestCourse(t *testing.T, db *gorm.DB, creatorID uint, title string) *models.Course {
	t.Helper()

	course := &models.Course{
		CreatorID:   creatorID,
		Title:       title,
		Description: "test course",
		Category:    "blockchain",
		IsPublished: true,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to create test course: %v", err)
	}
	return course
}
