// internal/database/connection.go
package database

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chainacademy/coursegate/internal/config"
	"github.com/chainacademy/coursegate/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Ownership{},
		&models.DelegatedAccess{},
		&models.AccessRequest{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_wallet_lower ON users(LOWER(wallet_address))",

		// Course indexes
		"CREATE INDEX IF NOT EXISTS idx_courses_creator ON courses(creator_id)",
		"CREATE INDEX IF NOT EXISTS idx_courses_published ON courses(is_published, category)",
		"CREATE INDEX IF NOT EXISTS idx_courses_created_at ON courses(created_at DESC)",

		// Ownership indexes (the composite unique index is created by AutoMigrate;
		// the duplicate-check transaction relies on it as a backstop)
		"CREATE INDEX IF NOT EXISTS idx_ownerships_owner ON ownerships(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_ownerships_course ON ownerships(course_id)",

		// Delegated access indexes. The partial unique index is the backstop
		// for the one-active-grant-per-(ownership, recipient) rule: expired
		// rows are retired at grant time, so concurrent duplicate inserts
		// cannot both commit.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_delegated_accesses_active_key ON delegated_accesses(ownership_id, recipient_address) WHERE is_active",
		"CREATE INDEX IF NOT EXISTS idx_delegated_accesses_recipient ON delegated_accesses(recipient_address, is_active)",

		// Access request indexes
		"CREATE INDEX IF NOT EXISTS idx_access_requests_course_status ON access_requests(course_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_access_requests_requester ON access_requests(requester_address)",
		"CREATE INDEX IF NOT EXISTS idx_access_requests_owner ON access_requests(owner_address)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// IsUniqueViolation reports whether err is a unique-constraint violation from
// the underlying database. Callers translate it into the domain Duplicate*
// errors so check-then-insert races lose cleanly instead of corrupting the
// ledger.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite (test driver) reports constraint failures as plain strings.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
