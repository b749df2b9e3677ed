// Package pathutil resolves file paths taken from configuration so that
// ledger files, databases and sound assets never land outside the directory
// they were configured under.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyPath is returned for empty or whitespace-only paths.
	ErrEmptyPath = errors.New("path is empty or whitespace-only")

	// ErrNullByte is returned for paths containing a NUL byte.
	ErrNullByte = errors.New("path contains null byte")

	// ErrEscapesBase is returned when the resolved path leaves the base directory.
	ErrEscapesBase = errors.New("path escapes base directory")
)

// ResolveSafePath resolves userPath relative to baseDir and guarantees the
// result stays inside baseDir after symlinks are followed.
//
// Relative paths are joined with baseDir; absolute paths are accepted only if
// they resolve to a location inside baseDir. The target itself does not need
// to exist yet, which is the normal case for a ledger file on first run.
//
// Example:
//
//	path, err := ResolveSafePath("/home/user/project", ".claude/engagement.json")
//	if errors.Is(err, ErrEscapesBase) {
//	    // reject the configuration
//	}
func ResolveSafePath(baseDir, userPath string) (string, error) {
	if strings.TrimSpace(userPath) == "" {
		return "", ErrEmptyPath
	}
	if strings.Contains(userPath, "\x00") {
		return "", ErrNullByte
	}

	candidate := userPath
	if !filepath.IsAbs(userPath) {
		candidate = filepath.Join(baseDir, userPath)
	}
	candidate = filepath.Clean(candidate)

	resolved, err := resolveMaybeMissing(candidate)
	if err != nil {
		return "", err
	}

	baseResolved, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	if !within(baseResolved, resolved) {
		return "", fmt.Errorf("%w: %s", ErrEscapesBase, userPath)
	}

	return resolved, nil
}

// ResolveAsset resolves a single file name inside dir. Unlike ResolveSafePath
// it rejects names with directory components, so a sound id taken from user
// settings can only ever select a file directly inside the asset directory.
func ResolveAsset(dir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyPath
	}
	if filepath.Base(name) != name || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %s", ErrEscapesBase, name)
	}
	return ResolveSafePath(dir, name)
}

// resolveMaybeMissing follows symlinks in path. When path (or some of its
// parents) does not exist yet, the deepest existing ancestor is resolved and
// the missing components are re-attached unchanged.
func resolveMaybeMissing(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	current := path
	var missing []string
	for {
		if _, err := os.Lstat(current); err == nil {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing parent directory found for %s", path)
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}

	resolved, err = filepath.EvalSymlinks(current)
	if err != nil {
		return "", fmt.Errorf("failed to resolve existing parent: %w", err)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		resolved = filepath.Join(resolved, missing[i])
	}
	return resolved, nil
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
