package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
app:
  env: production
server:
  port: "9090"
  cors_origins: ["http://projetor.local"]
redis:
  addr: localhost:6379
game:
  points_per_correct: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CATALOG_SEED_ON_START", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "gincana", cfg.App.Name, "defaults survive a partial file")
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"http://projetor.local"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr, "env wins over file")
	assert.Equal(t, 5, cfg.Game.PointsPerCorrect)
	assert.True(t, cfg.Catalog.SeedOnStart)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Game, cfg.Game)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, 30*time.Second, TTLDuration("30s", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
}
