package dump

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// History records dump attempts in a small SQLite database, so that a
// diagnostic command can show what was dumped, when, and whether it
// worked.
type History struct {
	db   *sql.DB
	path string
}

// HistoryEntry is one recorded dump attempt.
type HistoryEntry struct {
	When        time.Time
	Kind        string
	ArchiveFile string
	OK          bool
	Detail      string
}

// OpenHistory creates or opens the history database at path.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	h := &History{db: db, path: path}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return h, nil
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *History) Path() string {
	return h.path
}

func (h *History) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dumps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TEXT NOT NULL,
		kind TEXT NOT NULL,
		archive_file TEXT NOT NULL,
		ok INTEGER NOT NULL,
		detail TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_dumps_at ON dumps(at);
	`
	_, err := h.db.Exec(schema)
	return err
}

// Record stores one dump attempt. dumpErr may be nil.
func (h *History) Record(kind ArchiveKind, archiveFile string, dumpErr error) error {
	ok := 1
	detail := ""
	if dumpErr != nil {
		ok = 0
		detail = dumpErr.Error()
	}
	_, err := h.db.Exec(
		`INSERT INTO dumps (at, kind, archive_file, ok, detail) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), kind.String(), archiveFile, ok, detail,
	)
	if err != nil {
		return fmt.Errorf("record dump: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (h *History) Recent(limit int) ([]HistoryEntry, error) {
	rows, err := h.db.Query(
		`SELECT at, kind, archive_file, ok, detail FROM dumps ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query dump history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var at string
		var ok int
		if err := rows.Scan(&at, &e.Kind, &e.ArchiveFile, &ok, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan dump history: %w", err)
		}
		e.OK = ok != 0
		if t, err := time.Parse(time.RFC3339, at); err == nil {
			e.When = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
