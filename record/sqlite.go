package record

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/tebeka/atexit"
)

// SQLiteWriter writes accesses into the access table of a SQLite database.
type SQLiteWriter struct {
	*sql.DB

	path      string
	accesses  []Access
	batchSize int
}

// NewSQLiteWriter creates a writer for path. An empty path picks a unique
// name; a path without extension gets ".sqlite3".
func NewSQLiteWriter(path string) *SQLiteWriter {
	return &SQLiteWriter{
		path:      defaultPath(path, ".sqlite3"),
		batchSize: 100000,
	}
}

// Path returns the database file.
func (w *SQLiteWriter) Path() string {
	return w.path
}

// Init creates the database and the access table.
func (w *SQLiteWriter) Init() error {
	if _, err := os.Stat(w.path); err == nil {
		return fmt.Errorf("file %s already exists", w.path)
	}

	db, err := sql.Open("sqlite3", w.path)
	if err != nil {
		return fmt.Errorf("failed to open access database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE access
		(
			core    INTEGER NOT NULL,
			kind    VARCHAR(4) NOT NULL,
			address INTEGER NOT NULL,
			level   INTEGER NOT NULL,
			value   INTEGER NOT NULL
		);
	`)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to create access table: %w", err), db.Close())
	}

	w.DB = db

	atexit.Register(func() {
		if err := w.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing %s: %v\n", w.path, err)
		}
	})

	return nil
}

// Write buffers an access.
func (w *SQLiteWriter) Write(a Access) error {
	w.accesses = append(w.accesses, a)
	if len(w.accesses) >= w.batchSize {
		return w.Flush()
	}

	return nil
}

// Flush inserts the buffered accesses in one transaction.
func (w *SQLiteWriter) Flush() error {
	if len(w.accesses) == 0 || w.DB == nil {
		return nil
	}

	tx, err := w.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO access VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, a := range w.accesses {
		// SQLite integers are signed; out-of-range addresses keep their bits.
		_, err := stmt.Exec(a.Core, a.Kind, int64(a.Address), a.Level, int64(a.Value))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert access %+v: %w", a, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	w.accesses = nil

	return nil
}

// Close flushes and closes the database. Closing twice is a no-op.
func (w *SQLiteWriter) Close() error {
	if w.DB == nil {
		return nil
	}

	if err := w.Flush(); err != nil {
		return err
	}

	err := w.DB.Close()
	w.DB = nil

	return err
}
