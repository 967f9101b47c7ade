// Package sqlite opens a GORM handle on an embedded SQLite database. It backs
// local runs and tests; production uses pkg/postgres.
package sqlite

import (
	"fmt"

	"golang-paper-trader/pkg/postgres"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens the database at path (":memory:" for a throwaway store).
//
// SQLite has a single writer, so the pool is capped at one connection:
// concurrent transactions queue on the pool instead of failing with
// SQLITE_BUSY. SQLite ignores SELECT ... FOR UPDATE; the single connection is
// what serializes orders here.
func NewDB(path string, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(postgres.ParseLogLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return db, nil
}
