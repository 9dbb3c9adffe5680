package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no config.yaml in reach

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "pontos2024", cfg.Auth.APIKey)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 25.0, cfg.Goals.UnitValue)
	assert.Equal(t, "Marcelo", cfg.Goals.ExcludedFromAverage)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
server:
  port: 9000
auth:
  api_key: from-file
`), 0o644))
	chdir(t, dir)
	t.Setenv("PONTOS_AUTH_API_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.APIKey)
}

func TestLoad_InvalidPortRejected(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PONTOS_SERVER_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestGoalsConfig_TwoTier(t *testing.T) {
	goals := DefaultGoals()

	assert.Equal(t, 60.0, goals.WeeklyGoalFor("Ana"))
	assert.Equal(t, 40.0, goals.WeeklyGoalFor("Bruno"))
	assert.Equal(t, 240.0, goals.MonthlyGoalFor("Ana"))
	assert.Equal(t, 160.0, goals.MonthlyGoalFor("Diego"))
}

func TestColorFor(t *testing.T) {
	assert.NotEqual(t, NeutralColor, ColorFor("Ana"))
	assert.Equal(t, NeutralColor, ColorFor("Zuleide"))
}
