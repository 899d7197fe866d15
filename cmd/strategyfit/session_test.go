package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/strategyfit/common/file"
	"github.com/thrasher-corp/strategyfit/config"
	"github.com/thrasher-corp/strategyfit/database"
	"github.com/thrasher-corp/strategyfit/registry"
	"github.com/thrasher-corp/strategyfit/registry/jsonstore"
	"github.com/thrasher-corp/strategyfit/registry/sqlite"
)

// the session tests share the command line globals so none run in parallel
func setGlobals(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, config.DefaultFileName)
	dataDir = dir
	quiet = true
	verbose = false
	return dir
}

func TestNewSessionDefaults(t *testing.T) {
	dir := setGlobals(t)
	s, err := newSession()
	require.NoError(t, err)
	defer s.close()
	require.IsType(t, &jsonstore.Store{}, s.store)
	assert.Equal(t, filepath.Join(dir, config.DefaultRegistryFileName), s.store.(*jsonstore.Store).Path())
	assert.Nil(t, s.db)
	assert.Zero(t, s.positions.Len())

	_, err = connect(s.cfg)
	assert.ErrorIs(t, err, database.ErrDatabaseSupportDisabled)
}

func TestNewSessionMemory(t *testing.T) {
	dir := setGlobals(t)
	cfg := config.GenerateDefault(dir)
	cfg.RegistrySettings.Backend = config.RegistryMemory
	require.NoError(t, cfg.SaveConfig(configPath))

	s, err := newSession()
	require.NoError(t, err)
	defer s.close()
	assert.IsType(t, &registry.MemoryStore{}, s.store)
}

func TestNewSessionSQLite(t *testing.T) {
	dir := setGlobals(t)
	cfg := config.GenerateDefault(dir)
	cfg.RegistrySettings.Backend = config.RegistrySQLite
	cfg.Database.Enabled = true
	cfg.Database.MigrationDir = filepath.Join("..", "..", database.MigrationDir)
	require.NoError(t, cfg.SaveConfig(configPath))

	s, err := newSession()
	require.NoError(t, err)
	require.IsType(t, &sqlite.Store{}, s.store)
	require.NotNil(t, s.db)

	selectors, err := s.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, selectors)

	s.close()
	assert.Nil(t, s.db)
	assert.True(t, file.Exists(filepath.Join(dir, config.DefaultDatabaseFileName)))
}

func TestNewSessionMigrationDirNotFound(t *testing.T) {
	dir := setGlobals(t)
	cfg := config.GenerateDefault(dir)
	cfg.RegistrySettings.Backend = config.RegistrySQLite
	cfg.Database.Enabled = true
	require.NoError(t, cfg.SaveConfig(configPath))

	_, err := newSession()
	assert.ErrorIs(t, err, database.ErrMigrationDirNotFound, "the default folder is relative to the repository root")
}

func TestNewSessionInvalidConfig(t *testing.T) {
	dir := setGlobals(t)
	cfg := config.GenerateDefault(dir)
	cfg.RegistrySettings.Backend = "redis"
	require.NoError(t, cfg.SaveConfig(configPath))

	_, err := newSession()
	assert.Error(t, err)
}

func TestGenerateConfig(t *testing.T) {
	setGlobals(t)
	require.NoError(t, generateConfig(nil))
	cfg, err := config.ReadConfigFromFile(configPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.RegistryJSON, cfg.RegistrySettings.Backend)
}
