package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ateliervote/concours/internal/contest"
	"github.com/ateliervote/concours/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS contests (
			id TEXT PRIMARY KEY,
			snapshot TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS results_export (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			contest_id TEXT NOT NULL,
			category TEXT NOT NULL,
			voter TEXT NOT NULL,
			points REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (contest_id) REFERENCES contests(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_export_contest ON results_export(contest_id)`,
	}

	for _, m := range migrations {
		if _, err := r.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot upserts the full contest document. The snapshot is the
// only source of truth; derived vote caches are not part of it.
func (r *Repository) SaveSnapshot(ctx context.Context, c *contest.Contest) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO contests (id, snapshot, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		c.ID, string(doc), time.Now().UTC())
	return err
}

// LoadSnapshot reads a contest document back and rebuilds the derived
// vote caches from the raw votes it carries.
func (r *Repository) LoadSnapshot(ctx context.Context, id string) (*contest.Contest, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT snapshot FROM contests WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var c contest.Contest
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, err
	}
	c.Rebuild()
	return &c, nil
}

// AppendExport appends audit rows. Rows are never updated or deleted.
func (r *Repository) AppendExport(ctx context.Context, contestID string, rows []models.ExportRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results_export (contest_id, category, voter, points) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, contestID, row.Category, row.Voter, row.Points); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListExport returns the audit rows for a contest in insertion order.
func (r *Repository) ListExport(ctx context.Context, contestID string) ([]models.ExportRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, voter, points FROM results_export WHERE contest_id = ? ORDER BY id`, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ExportRow
	for rows.Next() {
		var row models.ExportRow
		if err := rows.Scan(&row.Category, &row.Voter, &row.Points); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
