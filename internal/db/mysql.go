package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"facilityhub/internal/model"
)

// NewMySQL returns a connected GORM DB instance. Driver errors are translated
// so that unique-index violations surface as gorm.ErrDuplicatedKey.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// emailCollationSQL pins users.email to a binary collation. The server default
// (utf8mb4_0900_ai_ci) would fold case in both the unique index and lookups.
const emailCollationSQL = "ALTER TABLE users MODIFY email VARCHAR(255) NOT NULL COLLATE utf8mb4_bin"

// Migrate creates or updates the tables owned by the user service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := caseSensitiveEmail(db); err != nil {
		return fmt.Errorf("email collation: %w", err)
	}
	return nil
}

// caseSensitiveEmail makes emails compare byte for byte. Only MySQL needs it;
// SQLite compares text with BINARY by default.
func caseSensitiveEmail(db *gorm.DB) error {
	if db.Dialector.Name() != "mysql" {
		return nil
	}
	return db.Exec(emailCollationSQL).Error
}

// Reset drops the tables owned by the user service. Development only.
func Reset(db *gorm.DB) error {
	return db.Migrator().DropTable(&model.User{})
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
