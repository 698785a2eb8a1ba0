package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	lite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": lite,
	}
}

func TestUsers(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			u := User{ID: "user_1", Email: "ada@example.com", PasswordHash: "hash", DisplayName: "Ada"}
			require.NoError(t, s.CreateUser(ctx, u))

			got, err := s.GetUserByEmail(ctx, "ada@example.com")
			require.NoError(t, err)
			assert.Equal(t, "user_1", got.ID)
			assert.Equal(t, "hash", got.PasswordHash)
			assert.False(t, got.CreatedAt.IsZero())

			got, err = s.GetUserByID(ctx, "user_1")
			require.NoError(t, err)
			assert.Equal(t, "Ada", got.DisplayName)

			err = s.CreateUser(ctx, User{ID: "user_2", Email: "ada@example.com"})
			assert.ErrorIs(t, err, ErrConflict)

			_, err = s.GetUserByEmail(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.GetUserByID(ctx, "user_404")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDiagramsAndSnapshots(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.CreateUser(ctx, User{ID: "user_1", Email: "a@example.com"}))
			require.NoError(t, s.CreateUser(ctx, User{ID: "user_2", Email: "b@example.com"}))

			base := time.UnixMilli(1_700_000_000_000)
			require.NoError(t, s.CreateDiagram(ctx, Diagram{ID: "diag_a", Name: "A", OwnerID: "user_1", CreatedAt: base}))
			require.NoError(t, s.CreateDiagram(ctx, Diagram{ID: "diag_b", Name: "B", OwnerID: "user_1", CreatedAt: base.Add(time.Second)}))
			require.NoError(t, s.CreateDiagram(ctx, Diagram{ID: "diag_c", Name: "C", OwnerID: "user_2", CreatedAt: base}))
			assert.ErrorIs(t, s.CreateDiagram(ctx, Diagram{ID: "diag_a", Name: "dup", OwnerID: "user_1"}), ErrConflict)

			list, err := s.ListDiagrams(ctx, "user_1")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "diag_b", list[0].ID, "most recently updated first")

			empty, err := s.ListDiagrams(ctx, "user_404")
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)

			_, err = s.LatestSnapshot(ctx, "diag_a")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.CreateSnapshot(ctx, Snapshot{ID: "snap_1", DiagramID: "diag_a", Version: 1, Document: []byte(`{"v":1}`), CreatedAt: base.Add(2 * time.Second)}))
			require.NoError(t, s.CreateSnapshot(ctx, Snapshot{ID: "snap_2", DiagramID: "diag_a", Version: 2, Document: []byte(`{"v":2}`), CreatedAt: base.Add(3 * time.Second)}))
			assert.ErrorIs(t, s.CreateSnapshot(ctx, Snapshot{ID: "snap_3", DiagramID: "diag_a", Version: 2, Document: []byte(`{}`)}), ErrConflict)
			assert.ErrorIs(t, s.CreateSnapshot(ctx, Snapshot{ID: "snap_4", DiagramID: "diag_404", Version: 1, Document: []byte(`{}`)}), ErrNotFound)

			latest, err := s.LatestSnapshot(ctx, "diag_a")
			require.NoError(t, err)
			assert.Equal(t, 2, latest.Version)
			assert.JSONEq(t, `{"v":2}`, string(latest.Document))

			list, err = s.ListDiagrams(ctx, "user_1")
			require.NoError(t, err)
			assert.Equal(t, "diag_a", list[0].ID, "saving bumps the diagram")

			d, err := s.GetDiagram(ctx, "diag_a")
			require.NoError(t, err)
			assert.Equal(t, "A", d.Name)
			assert.Equal(t, "user_1", d.OwnerID)

			require.NoError(t, s.DeleteDiagram(ctx, "diag_a"))
			assert.ErrorIs(t, s.DeleteDiagram(ctx, "diag_a"), ErrNotFound)
			_, err = s.GetDiagram(ctx, "diag_a")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.LatestSnapshot(ctx, "diag_a")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
