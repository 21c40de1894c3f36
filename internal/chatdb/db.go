// Package chatdb reads the Messages relational database. All access is
// read-only; the export never mutates a source database. Column-level schema
// differences between macOS generations are detected once at open and folded
// into the query layer, so callers always see the full row shape.
package chatdb

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a read-only SQLite connection to a chat.db.
type DB struct {
	*sql.DB
	features Features
}

// Features records which optional columns this database generation carries.
// Reply threading arrived with macOS 11, edit/unsent tracking with 13.
type Features struct {
	ThreadOriginator bool
	DateEdited       bool
	DateRetracted    bool
}

// Open opens a chat.db read-only. The immutable flag keeps SQLite from
// touching WAL side files, which matters when reading a live database owned
// by Messages or a file on read-only media.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("chat.db not found: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("open chat.db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping chat.db: %w", err)
	}

	d := &DB{DB: db}
	if err := d.detectFeatures(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("inspect chat.db schema: %w", err)
	}
	return d, nil
}

// Features reports the optional columns detected at open.
func (db *DB) Features() Features {
	return db.features
}

func (db *DB) detectFeatures() error {
	cols, err := db.tableColumns("message")
	if err != nil {
		return err
	}
	db.features = Features{
		ThreadOriginator: cols["thread_originator_guid"],
		DateEdited:       cols["date_edited"],
		DateRetracted:    cols["date_retracted"],
	}
	return nil
}

func (db *DB) tableColumns(table string) (map[string]bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
