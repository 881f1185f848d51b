package database

import (
	"strings"

	"example.com/tickettracker/config"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database owns the relational connection and hands out transactional scopes.
type Database struct {
	db *gorm.DB
}

// Connect establishes a database connection. A postgres:// URL selects the
// Postgres driver; anything else is treated as a path to a local sqlite file.
func Connect(cfg config.DatabaseConfig) (*Database, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(cfg.URL, "postgres://") || strings.HasPrefix(cfg.URL, "postgresql://") {
		dialector = postgres.Open(cfg.URL)
	} else {
		// sqlite needs the pragma for the snapshot cascade to fire
		dsn := cfg.URL
		if !strings.Contains(dsn, "_foreign_keys") {
			if strings.Contains(dsn, "?") {
				dsn += "&_foreign_keys=on"
			} else {
				dsn += "?_foreign_keys=on"
			}
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	return &Database{db: db}, nil
}

// FromGorm wraps an already-open gorm connection. Used by tests.
func FromGorm(db *gorm.DB) *Database {
	return &Database{db: db}
}

// DB returns the underlying gorm.DB instance
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Transaction runs fn inside a transactional scope: begin, invoke, commit on
// success, roll back on error or panic, release on every exit path.
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.db.Transaction(fn)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
