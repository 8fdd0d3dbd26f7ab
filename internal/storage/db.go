package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"shotlist/internal"
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
CREATE TABLE IF NOT EXISTS characters (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  lowerName TEXT NOT NULL UNIQUE,
  source TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  name TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'unknown',
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  receivedAt TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(source, name)
);

CREATE TABLE IF NOT EXISTS shots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  shotIndex INTEGER NOT NULL,
  shotId TEXT NOT NULL,
  fieldsJson TEXT NOT NULL,
  UNIQUE(documentId, shotIndex),
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS unresolved (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  shotIndex INTEGER NOT NULL,
  shotId TEXT NOT NULL,
  field TEXT NOT NULL,
  kind TEXT NOT NULL,
  value TEXT NOT NULL,
  suggestionsJson TEXT NOT NULL,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  documentId INTEGER,
  status TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// UpsertCharacters adds canonical names, ignoring case-insensitive
// duplicates. It returns how many names were new.
func (d *DB) UpsertCharacters(names []string, source string) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO characters (name, lowerName, source) VALUES (?, ?, ?) ON CONFLICT(lowerName) DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		res, err := stmt.Exec(name, strings.ToLower(name), source)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, tx.Commit()
}

// ListCharacters returns canonical names in insertion order.
func (d *DB) ListCharacters() ([]string, error) {
	rows, err := d.conn.Query(`SELECT name FROM characters ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (d *DB) ClearCharacters() error {
	_, err := d.conn.Exec(`DELETE FROM characters`)
	return err
}

// UpsertDocument stores a fetched document. A changed hash resets the status
// so the new content gets processed again.
func (d *DB) UpsertDocument(source, name, kind, receivedAt, hash, rawRef, status string) (internal.DocumentRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO documents (source, name, kind, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(source, name) DO UPDATE SET
  kind=CASE WHEN documents.hash <> excluded.hash THEN excluded.kind ELSE documents.kind END,
  receivedAt=excluded.receivedAt,
  status=CASE WHEN documents.hash <> excluded.hash THEN excluded.status ELSE documents.status END,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, source, name, kind, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.DocumentRow{}, err
	}

	row, err := d.GetDocumentByName(source, name)
	if err != nil {
		return internal.DocumentRow{}, err
	}
	if row == nil {
		return internal.DocumentRow{}, errors.New("failed to upsert document")
	}
	return *row, nil
}

const documentColumns = `id, source, name, kind, hash, status, rawRef, COALESCE(receivedAt, '')`

func scanDocument(scan func(dest ...any) error) (internal.DocumentRow, error) {
	var row internal.DocumentRow
	err := scan(&row.ID, &row.Source, &row.Name, &row.Kind, &row.Hash, &row.Status, &row.RawRef, &row.ReceivedAt)
	return row, err
}

func (d *DB) GetDocumentByName(source, name string) (*internal.DocumentRow, error) {
	row, err := scanDocument(d.conn.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE source = ? AND name = ?`, source, name).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetDocumentByID(id int) (*internal.DocumentRow, error) {
	row, err := scanDocument(d.conn.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustDocument(id int) (internal.DocumentRow, error) {
	row, err := d.GetDocumentByID(id)
	if err != nil {
		return internal.DocumentRow{}, err
	}
	if row == nil {
		return internal.DocumentRow{}, fmt.Errorf("document not found: id=%d", id)
	}
	return *row, nil
}

func (d *DB) ListDocumentsByStatus(status string, limit int) ([]internal.DocumentRow, error) {
	rows, err := d.conn.Query(`SELECT `+documentColumns+` FROM documents WHERE status = ? ORDER BY receivedAt ASC, id ASC LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DocumentRow
	for rows.Next() {
		row, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateDocumentStatus(documentID int, status string) error {
	_, err := d.conn.Exec(`UPDATE documents SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, documentID)
	return err
}

func (d *DB) UpdateDocumentKind(documentID int, kind string) error {
	_, err := d.conn.Exec(`UPDATE documents SET kind = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, kind, documentID)
	return err
}

// ClearDocumentProcessing drops shots and unresolved entries from an earlier
// run of the same document.
func (d *DB) ClearDocumentProcessing(documentID int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM shots WHERE documentId = ?`, documentID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM unresolved WHERE documentId = ?`, documentID); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) InsertShots(documentID int, shots []internal.ShotRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO shots (documentId, shotIndex, shotId, fieldsJson) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range shots {
		fields := make([]internal.Field, 0, s.Fields.Len())
		for _, k := range s.Fields.Keys() {
			fields = append(fields, internal.Field{Key: k, Value: s.Fields.Value(k)})
		}
		fieldsJSON, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(documentID, s.ShotIndex, s.ShotID, string(fieldsJSON)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListShots returns the normalized shots of a document in shot order.
func (d *DB) ListShots(documentID int) ([]*internal.NormalizedShot, error) {
	rows, err := d.conn.Query(`SELECT fieldsJson FROM shots WHERE documentId = ? ORDER BY shotIndex ASC`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*internal.NormalizedShot
	for rows.Next() {
		var fieldsJSON string
		if err := rows.Scan(&fieldsJSON); err != nil {
			return nil, err
		}
		var fields []internal.Field
		if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
			return nil, err
		}
		shot := internal.NewNormalizedShot()
		for _, f := range fields {
			shot.Set(f.Key, f.Value)
		}
		out = append(out, shot)
	}
	return out, rows.Err()
}

func (d *DB) InsertUnresolved(documentID int, issues []internal.Unresolved) error {
	if len(issues) == 0 {
		return nil
	}
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO unresolved (documentId, shotIndex, shotId, field, kind, value, suggestionsJson)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range issues {
		suggestions, _ := json.Marshal(u.Suggestions)
		if _, err := stmt.Exec(documentID, u.ShotIndex, u.ShotID, u.Field, string(u.Kind), u.Value, string(suggestions)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ListUnresolved(documentID int) ([]internal.Unresolved, error) {
	rows, err := d.conn.Query(`
SELECT shotIndex, shotId, field, kind, value, suggestionsJson
FROM unresolved WHERE documentId = ? ORDER BY shotIndex ASC, id ASC`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Unresolved
	for rows.Next() {
		var u internal.Unresolved
		var kind, suggestions string
		if err := rows.Scan(&u.ShotIndex, &u.ShotID, &u.Field, &kind, &u.Value, &suggestions); err != nil {
			return nil, err
		}
		u.Kind = internal.UnresolvedKind(kind)
		_ = json.Unmarshal([]byte(suggestions), &u.Suggestions)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, documentID int, status string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	var docID any
	if documentID > 0 {
		docID = documentID
	}
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, documentId, status, timingsJson, countsJson) VALUES (?, ?, ?, ?, ?)`,
		traceID, docID, status, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, COALESCE(documentId, 0), status, timingsJson, countsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var timingsJSON, countsJSON string
		if err := rows.Scan(&row.ID, &row.TraceID, &row.DocumentID, &row.Status, &timingsJSON, &countsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(timingsJSON), &row.Timings)
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
