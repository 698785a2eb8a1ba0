package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrammer/backend-go/internal/document"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Origins())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AUTOSAVE_INTERVAL", "5s")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDiagramDefaults(t *testing.T) {
	props, err := LoadDiagramDefaults("")
	require.NoError(t, err)
	assert.Equal(t, document.DefaultProperties(), props)

	path := filepath.Join(t.TempDir(), "defaults.yaml")
	yml := "width: 50\ngridType: hexes\ngridSpacing: 20\nsnapAngle: 12\nshowGrid: false\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	props, err = LoadDiagramDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, 100.0, props.Width, "clamped to the minimum canvas size")
	assert.Equal(t, 800.0, props.Height, "missing keys keep the defaults")
	assert.Equal(t, document.GridLines, props.GridType)
	assert.Equal(t, 20.0, props.GridSpacing)
	assert.Equal(t, 10.0, props.SnapAngle)
	assert.False(t, props.ShowGrid)

	_, err = LoadDiagramDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
