package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordRow represents a row in the records table.
type RecordRow struct {
	Path       string
	Kind       string
	Title      string
	Creator    string // presenter or author
	Status     string
	Tags       []string
	Categories []string
	Checksum   string
	UpdatedAt  time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Kind    string
	Title   string
	Snippet string
}

// UpsertRecord inserts or replaces a record and its FTS entry in one
// transaction.
func (db *DB) UpsertRecord(r RecordRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(r.Tags)
	catsJSON, _ := json.Marshal(r.Categories)

	_, err = tx.Exec(`
		INSERT INTO records (path, kind, title, creator, status, tags, categories, body, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind       = excluded.kind,
			title      = excluded.title,
			creator    = excluded.creator,
			status     = excluded.status,
			tags       = excluded.tags,
			categories = excluded.categories,
			body       = excluded.body,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, r.Path, r.Kind, r.Title, r.Creator, r.Status, string(tagsJSON), string(catsJSON), body, r.Checksum, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert record: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, r.Path, r.Title, r.Creator, body, r.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteRecord removes a record and its FTS entry.
func (db *DB) DeleteRecord(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM records WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a record, or empty string if
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM records WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed record.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM records`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// CountByKind returns the number of indexed records per kind.
func (db *DB) CountByKind() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT kind, COUNT(*) FROM records GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("index: count by kind: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, rows.Err()
}
