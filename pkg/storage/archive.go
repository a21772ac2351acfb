package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive persists rendered export files on disk so completed exports
// survive process restarts and the in-memory result TTL.
type Archive struct {
	baseDir string
}

// NewArchive ensures the archive directory exists and returns a handle.
func NewArchive(baseDir string) (*Archive, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Archive{baseDir: baseDir}, nil
}

// Store writes an export payload under the archive directory.
func (a *Archive) Store(fileName string, payload []byte) error {
	path, err := a.resolve(fileName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write archived export: %w", err)
	}
	return nil
}

// Load reads a previously archived export.
func (a *Archive) Load(fileName string) ([]byte, error) {
	path, err := a.resolve(fileName)
	if err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archived export: %w", err)
	}
	return payload, nil
}

// Remove deletes an archived export if present.
func (a *Archive) Remove(fileName string) error {
	path, err := a.resolve(fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove archived export: %w", err)
	}
	return nil
}

// Prune deletes archived exports older than the retention window and
// returns the removed file names.
func (a *Archive) Prune(retention time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-retention)
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		return nil, fmt.Errorf("scan archive: %w", err)
	}

	removed := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.baseDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

// resolve joins the file name onto the base directory, rejecting names
// that would escape it.
func (a *Archive) resolve(fileName string) (string, error) {
	if fileName == "" || strings.ContainsAny(fileName, `/\`) || fileName != filepath.Base(fileName) {
		return "", fmt.Errorf("invalid archive file name %q", fileName)
	}
	return filepath.Join(a.baseDir, fileName), nil
}
