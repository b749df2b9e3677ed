package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JamesPrial/todo-engagement/internal/pathutil"
)

// Options selects and locates a storage backend. It is filled from
// configuration by the config package.
type Options struct {
	// Backend is one of "json" (default), "sqlite", "postgres" or "memory".
	Backend string

	// JSONPath overrides the JSON data file (default: <projectDir>/.claude/engagement.json).
	JSONPath string

	// SQLitePath overrides the SQLite file (default: <projectDir>/.claude/engagement.db).
	SQLitePath string

	// PostgresURL is the connection string, required for the postgres backend.
	PostgresURL string
}

// NewBackend returns the storage backend described by opts.
//
// Custom file paths are resolved against projectDir and rejected if they
// escape it. Returns an error wrapping ErrUnknownBackend for an unrecognised
// backend name.
func NewBackend(projectDir string, opts Options) (KeyValueStore, error) {
	backendType := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backendType == "" {
		backendType = BackendJSON
	}

	switch backendType {
	case BackendJSON:
		path, err := resolvePath(projectDir, opts.JSONPath, "engagement.json")
		if err != nil {
			return nil, fmt.Errorf("failed to determine JSON data path: %w", err)
		}
		return NewJSONBackend(path), nil

	case BackendSQLite:
		path, err := resolvePath(projectDir, opts.SQLitePath, "engagement.db")
		if err != nil {
			return nil, fmt.Errorf("failed to determine SQLite database path: %w", err)
		}
		return NewSQLiteBackend(path)

	case BackendPostgres:
		connStr := strings.TrimSpace(opts.PostgresURL)
		if connStr == "" {
			return nil, fmt.Errorf("postgres backend requires a connection string")
		}
		return NewPostgresBackend(connStr)

	case BackendMemory:
		return NewMemoryBackend(), nil

	default:
		return nil, fmt.Errorf("%w: %q. Expected 'json', 'sqlite', 'postgres' or 'memory'", ErrUnknownBackend, backendType)
	}
}

// resolvePath validates a custom path, or returns <projectDir>/.claude/<defaultName>.
func resolvePath(projectDir, custom, defaultName string) (string, error) {
	custom = strings.TrimSpace(custom)
	if custom == "" {
		return filepath.Join(projectDir, ".claude", defaultName), nil
	}
	return pathutil.ResolveSafePath(projectDir, custom)
}
