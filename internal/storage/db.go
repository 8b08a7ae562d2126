package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"shelfsort/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS books (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  bookId TEXT NOT NULL,
  accNo TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  authorsJson TEXT NOT NULL DEFAULT '[]',
  publisher TEXT NOT NULL DEFAULT '',
  publishedYear INTEGER,
  department TEXT NOT NULL,
  status TEXT NOT NULL,
  rack INTEGER,
  shelf INTEGER,
  locationKey TEXT NOT NULL,
  callNumber TEXT,
  editionJson TEXT,
  copies INTEGER NOT NULL DEFAULT 1,
  loadedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_books_bookId ON books(bookId);
CREATE INDEX IF NOT EXISTS idx_books_locationKey ON books(locationKey);
CREATE INDEX IF NOT EXISTS idx_books_department ON books(department);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  command TEXT NOT NULL,
  source TEXT,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceBooks swaps the stored catalog for books in one transaction.
// Rows are kept one per record, so colliding book ids are never merged.
// locationKey is passed per book so this package does not depend on the
// grouping rules.
func (d *DB) ReplaceBooks(books []internal.Book, locationKey func(rack, shelf *int) string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM books`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO books (
  bookId, accNo, title, authorsJson, publisher, publishedYear,
  department, status, rack, shelf, locationKey, callNumber, editionJson, copies, loadedAt
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range books {
		authors := b.Authors
		if authors == nil {
			authors = []string{}
		}
		authorsJSON, _ := json.Marshal(authors)

		var editionJSON *string
		if b.Edition != nil {
			blob, err := json.Marshal(b.Edition)
			if err != nil {
				return err
			}
			s := string(blob)
			editionJSON = &s
		}

		var rack, shelf *int
		if b.Location != nil {
			rack, shelf = b.Location.Rack, b.Location.Shelf
		}

		if _, err := stmt.Exec(
			b.BookID, b.AccNo, b.Title, string(authorsJSON), b.Publisher, b.PublishedYear,
			string(b.Department), string(b.Status), rack, shelf, locationKey(rack, shelf),
			b.CallNumber, editionJSON, b.Copies,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListBooks() ([]internal.Book, error) {
	rows, err := d.conn.Query(`
SELECT bookId, accNo, title, authorsJson, publisher, publishedYear,
       department, status, rack, shelf, callNumber, editionJson, copies
FROM books
ORDER BY bookId, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Book
	for rows.Next() {
		var (
			b           internal.Book
			authorsJSON string
			department  string
			status      string
			year        sql.NullInt64
			rack        sql.NullInt64
			shelf       sql.NullInt64
			callNumber  sql.NullString
			editionJSON sql.NullString
		)
		if err := rows.Scan(
			&b.BookID, &b.AccNo, &b.Title, &authorsJSON, &b.Publisher, &year,
			&department, &status, &rack, &shelf, &callNumber, &editionJSON, &b.Copies,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(authorsJSON), &b.Authors)
		b.Department = internal.Department(department)
		b.Status = internal.Status(status)
		b.PublishedYear = nullInt(year)
		b.Location = &internal.Location{Rack: nullInt(rack), Shelf: nullInt(shelf)}
		if callNumber.Valid {
			v := callNumber.String
			b.CallNumber = &v
		}
		if editionJSON.Valid {
			var edition any
			if err := json.Unmarshal([]byte(editionJSON.String), &edition); err == nil {
				b.Edition = wholeNumber(edition)
			}
		}
		out = append(out, b)
	}

	return out, rows.Err()
}

func (d *DB) CountBooks() (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}

func (d *DB) InsertRun(traceID, command, source string, timings map[string]float64, counts internal.RunCounts) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, command, source, timingsJson, countsJson) VALUES (?, ?, ?, ?, ?)`,
		traceID, command, source, string(timingsJSON), string(countsJSON))
	return err
}

type RunRow struct {
	TraceID string
	Command string
	Source  string
	Counts  internal.RunCounts
}

func (d *DB) LastRun() (*RunRow, error) {
	var (
		row        RunRow
		source     sql.NullString
		countsJSON string
	)
	err := d.conn.QueryRow(`SELECT traceId, command, source, countsJson FROM runs ORDER BY id DESC LIMIT 1`).
		Scan(&row.TraceID, &row.Command, &source, &countsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.Source = source.String
	_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
	return &row, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// wholeNumber turns float64 values that came back from JSON into ints when
// they have no fractional part, matching how editions were read in.
func wholeNumber(v any) any {
	if f, ok := v.(float64); ok && f == float64(int(f)) {
		return int(f)
	}
	return v
}
