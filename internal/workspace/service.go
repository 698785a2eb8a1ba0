package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/store"
	"github.com/inamate/diagrammer/backend-go/internal/typeid"
)

var (
	ErrNotFound        = errors.New("diagram not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidDocument = errors.New("invalid document")
)

const maxSaveAttempts = 3

type Service struct {
	store    store.Store
	defaults document.Properties
}

// NewService creates the diagram library. New diagrams start with defaults.
func NewService(st store.Store, defaults document.Properties) *Service {
	return &Service{store: st, defaults: defaults}
}

type Diagram struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// SavedDocument is a stored diagram record and its version.
type SavedDocument struct {
	Version  int               `json:"version"`
	Document *document.Diagram `json:"document"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string) (*Diagram, error) {
	d := store.Diagram{
		ID:      typeid.NewDiagramID(),
		Name:    name,
		OwnerID: ownerID,
	}
	if err := s.store.CreateDiagram(ctx, d); err != nil {
		return nil, fmt.Errorf("create diagram: %w", err)
	}

	// Seed empty document snapshot
	doc := &document.Diagram{Properties: s.defaults, Items: []document.Item{}}
	if _, err := s.appendSnapshot(ctx, d.ID, doc, 1); err != nil {
		// A diagram without a snapshot cannot be opened; drop the row.
		if delErr := s.store.DeleteDiagram(context.WithoutCancel(ctx), d.ID); delErr != nil {
			err = errors.Join(err, fmt.Errorf("remove diagram: %w", delErr))
		}
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	created, err := s.store.GetDiagram(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("get diagram: %w", err)
	}
	return toDiagram(created), nil
}

func (s *Service) Get(ctx context.Context, diagramID, userID string) (*Diagram, error) {
	d, err := s.authorize(ctx, diagramID, userID)
	if err != nil {
		return nil, err
	}
	return toDiagram(d), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Diagram, error) {
	stored, err := s.store.ListDiagrams(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}

	diagrams := make([]Diagram, len(stored))
	for i := range stored {
		diagrams[i] = *toDiagram(&stored[i])
	}
	return diagrams, nil
}

func (s *Service) Delete(ctx context.Context, diagramID, userID string) error {
	if _, err := s.authorize(ctx, diagramID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteDiagram(ctx, diagramID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete diagram: %w", err)
	}
	return nil
}

// Authorize checks that userID may open diagramID.
func (s *Service) Authorize(ctx context.Context, diagramID, userID string) error {
	_, err := s.authorize(ctx, diagramID, userID)
	return err
}

// LatestDocument returns the most recent record of a diagram the user owns.
func (s *Service) LatestDocument(ctx context.Context, diagramID, userID string) (*SavedDocument, error) {
	if _, err := s.authorize(ctx, diagramID, userID); err != nil {
		return nil, err
	}
	return s.latest(ctx, diagramID)
}

// SaveDocument stores doc as the next version of a diagram the user owns.
func (s *Service) SaveDocument(ctx context.Context, diagramID, userID string, doc *document.Diagram) (*SavedDocument, error) {
	if _, err := s.authorize(ctx, diagramID, userID); err != nil {
		return nil, err
	}
	return s.StoreDocument(ctx, diagramID, doc)
}

// LoadDocument returns the latest record without an ownership check.
func (s *Service) LoadDocument(ctx context.Context, diagramID string) (*document.Diagram, error) {
	saved, err := s.latest(ctx, diagramID)
	if err != nil {
		return nil, err
	}
	return saved.Document, nil
}

// StoreDocument normalizes doc through the diagram model, so the stored
// record honours every clamp, and appends it as a new version.
func (s *Service) StoreDocument(ctx context.Context, diagramID string, doc *document.Diagram) (*SavedDocument, error) {
	normalized, err := Normalize(doc)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		version := 1
		prev, err := s.store.LatestSnapshot(ctx, diagramID)
		switch {
		case err == nil:
			version = prev.Version + 1
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("get snapshot: %w", err)
		}

		saved, err := s.appendSnapshot(ctx, diagramID, normalized, version)
		if errors.Is(err, store.ErrConflict) && attempt < maxSaveAttempts {
			continue
		}
		return saved, err
	}
}

// Normalize rebuilds doc through the diagram model and returns the resulting
// record.
func Normalize(doc *document.Diagram) (*document.Diagram, error) {
	d, err := diagram.Load(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return d.Record(), nil
}

func (s *Service) appendSnapshot(ctx context.Context, diagramID string, doc *document.Diagram, version int) (*SavedDocument, error) {
	data, err := doc.Marshal()
	if err != nil {
		return nil, err
	}
	err = s.store.CreateSnapshot(ctx, store.Snapshot{
		ID:        typeid.NewSnapshotID(),
		DiagramID: diagramID,
		Version:   version,
		Document:  data,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &SavedDocument{Version: version, Document: doc}, nil
}

func (s *Service) latest(ctx context.Context, diagramID string) (*SavedDocument, error) {
	snap, err := s.store.LatestSnapshot(ctx, diagramID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	doc, err := document.Parse(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	return &SavedDocument{Version: snap.Version, Document: doc}, nil
}

func (s *Service) authorize(ctx context.Context, diagramID, userID string) (*store.Diagram, error) {
	d, err := s.store.GetDiagram(ctx, diagramID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get diagram: %w", err)
	}
	if d.OwnerID != userID {
		return nil, ErrForbidden
	}
	return d, nil
}

func toDiagram(d *store.Diagram) *Diagram {
	return &Diagram{
		ID:        d.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
