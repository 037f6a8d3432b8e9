package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DataDirName), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, DataDirName, "commands"), cfg.CommandsDir)
	assert.Equal(t, filepath.Join(home, DataDirName, "wfnb.db"), cfg.DBPath)
	assert.False(t, cfg.Verbose)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WFNB_COMMANDS_DIR", "/srv/workflows")
	t.Setenv("WFNB_VERBOSE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/workflows", cfg.CommandsDir)
	assert.True(t, cfg.Verbose)
}

func TestEnsureDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.EnsureDataDir())

	assert.DirExists(t, cfg.DataDir)
	assert.DirExists(t, cfg.CommandsDir)
}
