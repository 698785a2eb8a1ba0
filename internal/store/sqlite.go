package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

//go:embed migrations/sqlite.sql
var sqliteSchema string

// SQLite stores everything in a single database file. Times are kept as unix
// milliseconds.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) CreateUser(ctx context.Context, u User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO users (id, email, password_hash, display_name, created_at)
        VALUES (?, ?, ?, ?, ?)
    `, u.ID, u.Email, u.PasswordHash, u.DisplayName, u.CreatedAt.UnixMilli())
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return fmt.Errorf("%w: email %s", ErrConflict, u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLite) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, `WHERE id = ?`, id)
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, `WHERE email = ?`, email)
}

func (s *SQLite) getUser(ctx context.Context, where string, arg any) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, email, password_hash, display_name, created_at
        FROM users `+where, arg)

	var u User
	var created int64
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(created)
	return &u, nil
}

func (s *SQLite) CreateDiagram(ctx context.Context, d Diagram) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO diagrams (id, name, owner_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
    `, d.ID, d.Name, d.OwnerID, d.CreatedAt.UnixMilli(), d.UpdatedAt.UnixMilli())
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return fmt.Errorf("%w: diagram %s", ErrConflict, d.ID)
		}
		return fmt.Errorf("insert diagram: %w", err)
	}
	return nil
}

func (s *SQLite) GetDiagram(ctx context.Context, id string) (*Diagram, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, owner_id, created_at, updated_at
        FROM diagrams
        WHERE id = ?
    `, id)

	d, err := scanSQLiteDiagram(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get diagram: %w", err)
	}
	return d, nil
}

func (s *SQLite) ListDiagrams(ctx context.Context, ownerID string) ([]Diagram, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, owner_id, created_at, updated_at
        FROM diagrams
        WHERE owner_id = ?
        ORDER BY updated_at DESC, id DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}
	defer rows.Close()

	out := []Diagram{}
	for rows.Next() {
		d, err := scanSQLiteDiagram(rows)
		if err != nil {
			return nil, fmt.Errorf("scan diagram: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *SQLite) DeleteDiagram(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE diagram_id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM diagrams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete diagram: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLite) CreateSnapshot(ctx context.Context, snap Snapshot) error {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE diagrams SET updated_at = ? WHERE id = ?`,
		snap.CreatedAt.UnixMilli(), snap.DiagramID)
	if err != nil {
		return fmt.Errorf("touch diagram: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: diagram %s", ErrNotFound, snap.DiagramID)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO snapshots (id, diagram_id, version, document, created_at)
        VALUES (?, ?, ?, ?, ?)
    `, snap.ID, snap.DiagramID, snap.Version, snap.Document, snap.CreatedAt.UnixMilli())
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return fmt.Errorf("%w: version %d of %s", ErrConflict, snap.Version, snap.DiagramID)
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) LatestSnapshot(ctx context.Context, diagramID string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, diagram_id, version, document, created_at
        FROM snapshots
        WHERE diagram_id = ?
        ORDER BY version DESC
        LIMIT 1
    `, diagramID)

	var snap Snapshot
	var created int64
	if err := row.Scan(&snap.ID, &snap.DiagramID, &snap.Version, &snap.Document, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	snap.CreatedAt = time.UnixMilli(created)
	return &snap, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDiagram(row rowScanner) (*Diagram, error) {
	var d Diagram
	var created, updated int64
	if err := row.Scan(&d.ID, &d.Name, &d.OwnerID, &created, &updated); err != nil {
		return nil, err
	}
	d.CreatedAt = time.UnixMilli(created)
	d.UpdatedAt = time.UnixMilli(updated)
	return &d, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode() == sqlite3.CONSTRAINT_UNIQUE ||
			serr.ExtendedCode() == sqlite3.CONSTRAINT_PRIMARYKEY
	}
	return false
}
