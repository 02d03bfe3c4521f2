// Package lifecycle is the system of record for project documents.
//
// Every document a workflow produces is registered here as a draft and
// later promoted to active or retired to obsolete. The execution
// pipeline only ever appends through Register; reads and status changes
// belong to the serving surface. Storage is SQLite via database/sql.
package lifecycle

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// DBFileName is the on-disk database name. It is also on the
// snapshotter's ignore list so a store placed inside the project tree
// never shows up as an artifact.
const DBFileName = "lifecycle.db"

// Document statuses, in lifecycle order.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusObsolete = "obsolete"
)

// ValidStatus reports whether s is a recognized document status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusActive, StatusObsolete:
		return true
	}
	return false
}

// Config holds the store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig returns the default store configuration. GAO_DATA_DIR
// overrides the location; otherwise the store lives under ~/.gao.
func DefaultConfig() Config {
	if dir := os.Getenv("GAO_DATA_DIR"); dir != "" {
		return Config{DataDir: dir}
	}
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".gao")}
}

// Metadata is the context bag persisted with each registration.
type Metadata struct {
	Workflow        string            `json:"workflow,omitempty"`
	Epic            string            `json:"epic,omitempty"`
	Story           string            `json:"story,omitempty"`
	Phase           string            `json:"phase,omitempty"`
	Variables       map[string]string `json:"variables,omitempty"`
	PipelineCreated bool              `json:"pipeline_created"`
}

// DocumentRecord is one persisted document.
type DocumentRecord struct {
	ID        string   `json:"id"`
	Path      string   `json:"path"`
	DocType   string   `json:"doc_type"`
	Author    string   `json:"author"`
	Status    string   `json:"status"`
	Metadata  Metadata `json:"metadata"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// ListFilter narrows ListDocuments results. Zero fields match anything.
type ListFilter struct {
	Status   string
	DocType  string
	Workflow string
	Limit    int
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the document registry backed by SQLite.
type Store struct {
	db    *sql.DB
	cfg   Config
	hooks storeHooks
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// storeHooks intercept database calls so tests can inject faults.
type storeHooks struct {
	exec  func(db execer, query string, args ...any) (sql.Result, error)
	query func(db queryer, query string, args ...any) (*sql.Rows, error)
}

func defaultStoreHooks() storeHooks {
	return storeHooks{
		exec: func(db execer, query string, args ...any) (sql.Result, error) {
			return db.Exec(query, args...)
		},
		query: func(db queryer, query string, args ...any) (*sql.Rows, error) {
			return db.Query(query, args...)
		},
	}
}

func (s *Store) execHook(db execer, query string, args ...any) (sql.Result, error) {
	if s.hooks.exec != nil {
		return s.hooks.exec(db, query, args...)
	}
	return db.Exec(query, args...)
}

func (s *Store) queryHook(db queryer, query string, args ...any) (*sql.Rows, error) {
	if s.hooks.query != nil {
		return s.hooks.query(db, query, args...)
	}
	return db.Query(query, args...)
}

// New creates a Store with the given configuration. It creates the data
// directory if needed, opens SQLite with WAL mode, and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("lifecycle: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, DBFileName)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("lifecycle: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, hooks: defaultStoreHooks()}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("lifecycle: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id         TEXT PRIMARY KEY,
			path       TEXT NOT NULL,
			doc_type   TEXT NOT NULL,
			author     TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'draft',
			workflow   TEXT NOT NULL DEFAULT '',
			epic       TEXT NOT NULL DEFAULT '',
			story      TEXT NOT NULL DEFAULT '',
			phase      TEXT NOT NULL DEFAULT '',
			metadata   TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_documents_path     ON documents(path);
		CREATE INDEX IF NOT EXISTS idx_documents_status   ON documents(status);
		CREATE INDEX IF NOT EXISTS idx_documents_workflow ON documents(workflow);
		CREATE INDEX IF NOT EXISTS idx_documents_created  ON documents(created_at DESC);
	`
	if _, err := s.execHook(s.db, schema); err != nil {
		return err
	}
	return nil
}

// ─── Documents ───────────────────────────────────────────────────────────────

// Register appends one document as a draft and returns the stored
// record. The pipeline never updates or deletes through this path.
func (s *Store) Register(path, docType, author string, meta Metadata) (*DocumentRecord, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("lifecycle: register: path is required")
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: encode metadata: %w", err)
	}

	now := timeNow().UTC().Format(time.RFC3339)
	rec := &DocumentRecord{
		ID:        uuid.NewString(),
		Path:      path,
		DocType:   docType,
		Author:    author,
		Status:    StatusDraft,
		Metadata:  meta,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.execHook(s.db,
		`INSERT INTO documents (id, path, doc_type, author, status, workflow, epic, story, phase, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Path, rec.DocType, rec.Author, rec.Status,
		meta.Workflow, meta.Epic, meta.Story, meta.Phase, string(metaJSON),
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: insert document: %w", err)
	}
	return rec, nil
}

// GetDocument retrieves a document by id.
func (s *Store) GetDocument(id string) (*DocumentRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, path, doc_type, author, status, metadata, created_at, updated_at
		 FROM documents WHERE id = ?`, id,
	)
	rec, err := scanDocument(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("lifecycle: document %s not found", id)
		}
		return nil, fmt.Errorf("lifecycle: get document: %w", err)
	}
	return rec, nil
}

// ListDocuments returns documents matching filter, newest first.
func (s *Store) ListDocuments(filter ListFilter) ([]DocumentRecord, error) {
	query := `
		SELECT id, path, doc_type, author, status, metadata, created_at, updated_at
		FROM documents
		WHERE 1=1
	`
	args := []any{}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.DocType != "" {
		query += " AND doc_type = ?"
		args = append(args, filter.DocType)
	}
	if filter.Workflow != "" {
		query += " AND workflow = ?"
		args = append(args, filter.Workflow)
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.queryHook(s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list documents: %w", err)
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		rec, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("lifecycle: scan document: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lifecycle: iterate documents: %w", err)
	}
	return records, nil
}

// UpdateStatus moves a document to a new lifecycle status.
func (s *Store) UpdateStatus(id, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("lifecycle: invalid status %q", status)
	}
	now := timeNow().UTC().Format(time.RFC3339)
	res, err := s.execHook(s.db,
		`UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`,
		status, now, id,
	)
	if err != nil {
		return fmt.Errorf("lifecycle: update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lifecycle: update status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("lifecycle: document %s not found", id)
	}
	return nil
}

// scanDocument reads one document row through the given scan function.
func scanDocument(scan func(dest ...any) error) (*DocumentRecord, error) {
	var rec DocumentRecord
	var metaJSON string
	if err := scan(&rec.ID, &rec.Path, &rec.DocType, &rec.Author, &rec.Status,
		&metaJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metaJSON), &rec.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &rec, nil
}
