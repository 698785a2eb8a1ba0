// Package store persists accounts, diagrams and the serialized diagram
// records (snapshots) behind a single Store interface.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

type Diagram struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot is one saved version of a diagram record. Versions start at 1 and
// are unique per diagram.
type Snapshot struct {
	ID        string
	DiagramID string
	Version   int
	Document  []byte
	CreatedAt time.Time
}

type Store interface {
	// CreateUser fails with ErrConflict when the email is taken.
	CreateUser(ctx context.Context, u User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	CreateDiagram(ctx context.Context, d Diagram) error
	GetDiagram(ctx context.Context, id string) (*Diagram, error)
	// ListDiagrams returns the owner's diagrams, most recently updated first.
	ListDiagrams(ctx context.Context, ownerID string) ([]Diagram, error)
	// DeleteDiagram removes the diagram and all its snapshots.
	DeleteDiagram(ctx context.Context, id string) error

	// CreateSnapshot stores a new version and bumps the diagram's UpdatedAt.
	// It fails with ErrNotFound for an unknown diagram and ErrConflict when
	// the version already exists.
	CreateSnapshot(ctx context.Context, s Snapshot) error
	LatestSnapshot(ctx context.Context, diagramID string) (*Snapshot, error)

	Close() error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
	_ Store = (*Postgres)(nil)
)
