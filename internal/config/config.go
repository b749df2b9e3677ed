// Package config loads process configuration for the engagement binaries.
//
// Values come from an optional YAML file, then TODO_* environment variables,
// then built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/JamesPrial/todo-engagement/internal/pathutil"
	"github.com/JamesPrial/todo-engagement/internal/settings"
	"github.com/JamesPrial/todo-engagement/internal/storage"
)

// DefaultLedgerKey is the storage key the ledger document is written under.
const DefaultLedgerKey = "notificationEngagement"

// Config is the fully resolved process configuration.
type Config struct {
	// ProjectDir anchors every relative path.
	ProjectDir string

	Storage StorageConfig
	Sound   SoundConfig

	// Viper is kept so the settings watcher can follow the same file.
	Viper *viper.Viper
}

// StorageConfig selects the durable key-value store.
type StorageConfig struct {
	Backend     string
	JSONPath    string
	SQLitePath  string
	PostgresURL string
	Key         string
}

// Options converts the storage section into storage.Options.
func (c StorageConfig) Options() storage.Options {
	return storage.Options{
		Backend:     c.Backend,
		JSONPath:    c.JSONPath,
		SQLitePath:  c.SQLitePath,
		PostgresURL: c.PostgresURL,
	}
}

// SoundConfig locates sound assets and the player binary.
type SoundConfig struct {
	Dir     string
	Command string
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"storage.backend":      "TODO_STORAGE_BACKEND",
	"storage.json_path":    "TODO_LEDGER_PATH",
	"storage.sqlite_path":  "TODO_SQLITE_PATH",
	"storage.postgres_url": "TODO_POSTGRES_URL",
	"storage.key":          "TODO_LEDGER_KEY",
	"sound.dir":            "TODO_SOUND_DIR",
	"sound.command":        "TODO_SOUND_COMMAND",
}

// Load reads configuration for projectDir. configPath may be empty, in which
// case <projectDir>/.claude/engagement.yaml is used if it exists. A missing
// file is not an error.
func Load(projectDir, configPath string) (*Config, error) {
	projectDir = strings.TrimSpace(projectDir)
	if projectDir == "" {
		return nil, errors.New("project directory is required")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configPath == "" {
		configPath = filepath.Join(projectDir, ".claude", "engagement.yaml")
	}
	v.SetConfigFile(configPath)

	v.SetDefault("storage.backend", storage.BackendJSON)
	v.SetDefault("storage.key", DefaultLedgerKey)
	v.SetDefault("sound.command", "")
	settings.SetDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	// Read leaf keys individually: viper only merges env and defaults into
	// leaf lookups, not into a whole-section UnmarshalKey.
	cfg := &Config{
		ProjectDir: projectDir,
		Viper:      v,
		Storage: StorageConfig{
			Backend:     v.GetString("storage.backend"),
			JSONPath:    v.GetString("storage.json_path"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresURL: v.GetString("storage.postgres_url"),
			Key:         v.GetString("storage.key"),
		},
		Sound: SoundConfig{
			Dir:     v.GetString("sound.dir"),
			Command: v.GetString("sound.command"),
		},
	}
	if strings.TrimSpace(cfg.Storage.Key) == "" {
		cfg.Storage.Key = DefaultLedgerKey
	}

	soundDir, err := resolveSoundDir(projectDir, cfg.Sound.Dir)
	if err != nil {
		return nil, err
	}
	cfg.Sound.Dir = soundDir

	return cfg, nil
}

// resolveSoundDir anchors a configured sound directory at projectDir and
// rejects one outside it. Empty means <projectDir>/.claude/sounds.
func resolveSoundDir(projectDir, dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return filepath.Join(projectDir, ".claude", "sounds"), nil
	}
	resolved, err := pathutil.ResolveSafePath(projectDir, dir)
	if err != nil {
		return "", fmt.Errorf("invalid sound directory: %w", err)
	}
	return resolved, nil
}
