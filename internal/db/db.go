package db

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// busyTimeoutDSN is appended to the path so every pooled connection waits
// on a locked database instead of failing with SQLITE_BUSY.
const busyTimeoutDSN = "?_pragma=busy_timeout(5000)"

// DB is the SQLite store holding MODIS samples.
type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the database at path and applies all migrations.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+busyTimeoutDSN)
	if err != nil {
		return nil, err
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}
