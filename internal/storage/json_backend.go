package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// JSONBackend implements KeyValueStore using a single JSON object on disk.
//
// The file holds a flat {"key": "value"} object. Every Set rewrites the whole
// file through a temporary file and os.Rename so an interrupted write never
// leaves a truncated document behind.
type JSONBackend struct {
	// DataFile is the absolute path to the JSON data file.
	DataFile string

	mu sync.Mutex
}

// NewJSONBackend creates a new JSONBackend for the given file path.
//
// Parent directories are created on the first write.
func NewJSONBackend(dataFile string) *JSONBackend {
	return &JSONBackend{
		DataFile: dataFile,
	}
}

// Get returns the value stored under key.
//
// A missing or empty file holds no keys. A file that does not decode returns
// an error wrapping ErrCorruptData so the caller can report it.
func (b *JSONBackend) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.readAll()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set replaces the value stored under key and atomically rewrites the file.
// A corrupt file is replaced by a fresh document.
func (b *JSONBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.readForWrite()
	if err != nil {
		return err
	}
	values[key] = value
	return b.writeAll(values)
}

// Delete removes key and rewrites the file. A missing key is not an error.
func (b *JSONBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.readForWrite()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return b.writeAll(values)
}

// Close is a no-op; the backend holds no open handles between calls.
func (b *JSONBackend) Close() error { return nil }

// readAll loads the key-value object. A missing or empty file, or a JSON
// null, yields an empty map.
func (b *JSONBackend) readAll() (map[string]string, error) {
	data, err := os.ReadFile(b.DataFile)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]string), nil
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorruptData, b.DataFile, err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

// readForWrite is readAll, except that a corrupt file reads as empty so the
// next write replaces it.
func (b *JSONBackend) readForWrite() (map[string]string, error) {
	values, err := b.readAll()
	if errors.Is(err, ErrCorruptData) {
		return make(map[string]string), nil
	}
	return values, err
}

// writeAll serializes values with 2-space indentation and a trailing newline,
// then replaces DataFile via a temp file in the same directory.
func (b *JSONBackend) writeAll(values map[string]string) error {
	dir := filepath.Dir(b.DataFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode data file: %w", err)
	}
	data = append(data, '\n')

	tmpFile, err := os.CreateTemp(dir, "*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, b.DataFile); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	return nil
}
