package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; a one-connection pool avoids
	// SQLITE_BUSY under concurrent requests and keeps :memory:
	// databases coherent.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		password_hash TEXT,
		age INTEGER,
		gender TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS level_records (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		chapter TEXT NOT NULL,
		level_number INTEGER NOT NULL,
		score INTEGER NOT NULL,
		time_taken INTEGER,
		completed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_level_records_user_chapter
		ON level_records (user_id, chapter);

	CREATE TABLE IF NOT EXISTS password_resets (
		id TEXT NOT NULL PRIMARY KEY,
		email TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		consumed_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
