package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
	Path string
}

// NewConnection opens (creating if necessary) the SQLite database under
// dataDir. WAL keeps reads cheap during the write phase; foreign keys are
// on because articles reference organisations.
func NewConnection(dataDir, dbFile string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, dbFile)
	// _time_format=sqlite keeps stored timestamps compatible with
	// date()/strftime() in aggregation queries.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// without giving anything up in a sequential pipeline.
	db.SetMaxOpenConns(1)

	return &DB{DB: db, Path: path}, nil
}
