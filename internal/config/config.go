// Package config resolves the tool's directories and settings: built-in
// defaults first, then an optional wfnb.yaml, then WFNB_* environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DataDirName is the per-user data directory under $HOME, shared with the
// wider tool family the documents come from. A directory of the same name in
// the working tree takes precedence for the commands collection.
const DataDirName = ".mcli"

type Config struct {
	DataDir     string `mapstructure:"data_dir"`
	CommandsDir string `mapstructure:"commands_dir"`
	DBPath      string `mapstructure:"db_path"`
	Verbose     bool   `mapstructure:"verbose"`
}

// Load resolves the configuration. A missing config file is fine; a present
// but unreadable one is not.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dataDir := filepath.Join(home, DataDirName)

	v := viper.New()
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("commands_dir", defaultCommandsDir(dataDir))
	v.SetDefault("db_path", filepath.Join(dataDir, "wfnb.db"))
	v.SetDefault("verbose", false)

	v.SetConfigName("wfnb")
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)
	v.AddConfigPath(".")
	v.SetEnvPrefix("WFNB")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// defaultCommandsDir prefers a project-local collection when the working
// tree carries one.
func defaultCommandsDir(dataDir string) string {
	local := filepath.Join(DataDirName, "commands")
	if st, err := os.Stat(local); err == nil && st.IsDir() {
		return local
	}
	return filepath.Join(dataDir, "commands")
}

// EnsureDataDir creates the data and commands directories when missing.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.CommandsDir, 0755)
}
