package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/postgres.sql
var postgresSchema string

type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL, checks the connection and applies the
// schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u User) error {
	_, err := p.pool.Exec(ctx, `
        INSERT INTO users (id, email, password_hash, display_name)
        VALUES ($1, $2, $3, $4)
    `, u.ID, u.Email, u.PasswordHash, u.DisplayName)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: email %s", ErrConflict, u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (*User, error) {
	return p.getUser(ctx, `WHERE id = $1`, id)
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return p.getUser(ctx, `WHERE email = $1`, email)
}

func (p *Postgres) getUser(ctx context.Context, where string, arg any) (*User, error) {
	row := p.pool.QueryRow(ctx, `
        SELECT id, email, password_hash, display_name, created_at
        FROM users `+where, arg)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (p *Postgres) CreateDiagram(ctx context.Context, d Diagram) error {
	_, err := p.pool.Exec(ctx, `
        INSERT INTO diagrams (id, name, owner_id)
        VALUES ($1, $2, $3)
    `, d.ID, d.Name, d.OwnerID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: diagram %s", ErrConflict, d.ID)
		}
		return fmt.Errorf("insert diagram: %w", err)
	}
	return nil
}

func (p *Postgres) GetDiagram(ctx context.Context, id string) (*Diagram, error) {
	row := p.pool.QueryRow(ctx, `
        SELECT id, name, owner_id, created_at, updated_at
        FROM diagrams
        WHERE id = $1
    `, id)

	var d Diagram
	if err := row.Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get diagram: %w", err)
	}
	return &d, nil
}

func (p *Postgres) ListDiagrams(ctx context.Context, ownerID string) ([]Diagram, error) {
	rows, err := p.pool.Query(ctx, `
        SELECT id, name, owner_id, created_at, updated_at
        FROM diagrams
        WHERE owner_id = $1
        ORDER BY updated_at DESC, id DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Diagram, error) {
		var d Diagram
		err := row.Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan diagrams: %w", err)
	}
	if out == nil {
		out = []Diagram{}
	}
	return out, nil
}

func (p *Postgres) DeleteDiagram(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM diagrams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete diagram: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateSnapshot(ctx context.Context, s Snapshot) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE diagrams SET updated_at = now() WHERE id = $1`, s.DiagramID)
		if err != nil {
			return fmt.Errorf("touch diagram: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: diagram %s", ErrNotFound, s.DiagramID)
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO snapshots (id, diagram_id, version, document)
            VALUES ($1, $2, $3, $4)
        `, s.ID, s.DiagramID, s.Version, s.Document)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("%w: version %d of %s", ErrConflict, s.Version, s.DiagramID)
			}
			return fmt.Errorf("insert snapshot: %w", err)
		}
		return nil
	})
}

func (p *Postgres) LatestSnapshot(ctx context.Context, diagramID string) (*Snapshot, error) {
	row := p.pool.QueryRow(ctx, `
        SELECT id, diagram_id, version, document, created_at
        FROM snapshots
        WHERE diagram_id = $1
        ORDER BY version DESC
        LIMIT 1
    `, diagramID)

	var s Snapshot
	if err := row.Scan(&s.ID, &s.DiagramID, &s.Version, &s.Document, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &s, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
