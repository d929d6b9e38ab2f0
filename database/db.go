// Package database opens the local SQLite store and applies the ordered
// schema migrations.
package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open initializes the SQLite database connection. Migrations are applied
// separately via Migrate so callers (and tests) control the target version.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// SQLite ships with foreign keys off
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	return db, nil
}
