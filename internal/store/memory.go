package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory keeps everything in process. It backs tests and the "memory" driver.
type Memory struct {
	mu        sync.RWMutex
	users     map[string]User
	emails    map[string]string
	diagrams  map[string]Diagram
	snapshots map[string][]Snapshot
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]User),
		emails:    make(map[string]string),
		diagrams:  make(map[string]Diagram),
		snapshots: make(map[string][]Snapshot),
		now:       time.Now,
	}
}

func (m *Memory) CreateUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.emails[u.Email]; ok {
		return fmt.Errorf("%w: email %s", ErrConflict, u.Email)
	}
	if _, ok := m.users[u.ID]; ok {
		return fmt.Errorf("%w: user %s", ErrConflict, u.ID)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}
	m.users[u.ID] = u
	m.emails[u.Email] = u.ID
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *Memory) CreateDiagram(_ context.Context, d Diagram) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.diagrams[d.ID]; ok {
		return fmt.Errorf("%w: diagram %s", ErrConflict, d.ID)
	}
	now := m.now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}
	m.diagrams[d.ID] = d
	return nil
}

func (m *Memory) GetDiagram(_ context.Context, id string) (*Diagram, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.diagrams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m *Memory) ListDiagrams(_ context.Context, ownerID string) ([]Diagram, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Diagram{}
	for _, d := range m.diagrams {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) DeleteDiagram(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.diagrams[id]; !ok {
		return ErrNotFound
	}
	delete(m.diagrams, id)
	delete(m.snapshots, id)
	return nil
}

func (m *Memory) CreateSnapshot(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.diagrams[s.DiagramID]
	if !ok {
		return fmt.Errorf("%w: diagram %s", ErrNotFound, s.DiagramID)
	}
	for _, existing := range m.snapshots[s.DiagramID] {
		if existing.Version == s.Version {
			return fmt.Errorf("%w: version %d of %s", ErrConflict, s.Version, s.DiagramID)
		}
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}
	s.Document = append([]byte(nil), s.Document...)
	m.snapshots[s.DiagramID] = append(m.snapshots[s.DiagramID], s)

	d.UpdatedAt = s.CreatedAt
	m.diagrams[d.ID] = d
	return nil
}

func (m *Memory) LatestSnapshot(_ context.Context, diagramID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *Snapshot
	for i, s := range m.snapshots[diagramID] {
		if latest == nil || s.Version > latest.Version {
			latest = &m.snapshots[diagramID][i]
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	out := *latest
	out.Document = append([]byte(nil), latest.Document...)
	return &out, nil
}

func (m *Memory) Close() error { return nil }
