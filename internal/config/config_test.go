package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JamesPrial/todo-engagement/internal/pathutil"
	"github.com/JamesPrial/todo-engagement/internal/settings"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "engagement.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func Test_Load_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Storage.Backend != "json" {
		t.Errorf("Storage.Backend = %q, want json", cfg.Storage.Backend)
	}
	if cfg.Storage.Key != DefaultLedgerKey {
		t.Errorf("Storage.Key = %q, want %q", cfg.Storage.Key, DefaultLedgerKey)
	}
	if want := filepath.Join(dir, ".claude", "sounds"); cfg.Sound.Dir != want {
		t.Errorf("Sound.Dir = %q, want %q", cfg.Sound.Dir, want)
	}

	s, err := settings.FromViper(cfg.Viper)
	if err != nil {
		t.Fatalf("FromViper() unexpected error: %v", err)
	}
	if s != settings.Defaults() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func Test_Load_EmptyProjectDir(t *testing.T) {
	if _, err := Load("  ", ""); err == nil {
		t.Fatal("Load() with empty project dir returned nil error")
	}
}

func Test_Load_File(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
storage:
  backend: sqlite
  sqlite_path: data/ledger.db
  key: ledger
sound:
  command: paplay
notifications:
  default_sound: bell
`)

	cfg, err := Load(dir, path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.SQLitePath != "data/ledger.db" || cfg.Storage.Key != "ledger" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Sound.Command != "paplay" {
		t.Errorf("Sound.Command = %q, want paplay", cfg.Sound.Command)
	}
	s, _ := settings.FromViper(cfg.Viper)
	if s.DefaultSound != "bell" {
		t.Errorf("DefaultSound = %q, want bell", s.DefaultSound)
	}
}

func Test_Load_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "storage:\n  backend: sqlite\n")
	t.Setenv("TODO_STORAGE_BACKEND", "memory")
	t.Setenv("TODO_LEDGER_PATH", "custom.json")

	cfg, err := Load(dir, path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Storage.JSONPath != "custom.json" {
		t.Errorf("Storage.JSONPath = %q, want custom.json", cfg.Storage.JSONPath)
	}
}

func Test_Load_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "storage: [unterminated\n")

	if _, err := Load(dir, path); err == nil {
		t.Fatal("Load() with malformed YAML returned nil error")
	}
}

func Test_StorageConfig_Options(t *testing.T) {
	c := StorageConfig{Backend: "postgres", PostgresURL: "postgres://x", JSONPath: "a", SQLitePath: "b"}
	o := c.Options()
	if o.Backend != "postgres" || o.PostgresURL != "postgres://x" || o.JSONPath != "a" || o.SQLitePath != "b" {
		t.Errorf("Options() = %+v", o)
	}
}

func Test_Load_SoundDir(t *testing.T) {
	dir := t.TempDir()
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}

	tests := []struct {
		name    string
		yaml    string
		want    string
		wantErr error
	}{
		{"relative to project", "sound:\n  dir: assets/sounds\n", filepath.Join(realDir, "assets", "sounds"), nil},
		{"absolute inside project", "sound:\n  dir: " + filepath.Join(dir, "snd") + "\n", filepath.Join(realDir, "snd"), nil},
		{"escapes project", "sound:\n  dir: ../elsewhere\n", "", pathutil.ErrEscapesBase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.yaml)
			cfg, err := Load(dir, path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if cfg.Sound.Dir != tt.want {
				t.Errorf("Sound.Dir = %q, want %q", cfg.Sound.Dir, tt.want)
			}
		})
	}
}
