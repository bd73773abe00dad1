// Package artifact stores JSON artifacts produced by the agent capabilities.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const tempSuffix = ".tmp"

// FileSink stores artifacts as files in a single directory
type FileSink struct {
	dir string
	mu  sync.RWMutex
}

// NewFileSink creates a sink rooted at dir, creating the directory if needed
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		dir = "./artifacts"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// List returns the names of the stored artifacts, sorted
func (s *FileSink) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read artifact directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), tempSuffix) {
			continue
		}
		paths = append(paths, e.Name())
	}
	sort.Strings(paths)
	return paths, nil
}

// Put writes content atomically under path
func (s *FileSink) Put(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidatePath(path); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := filepath.Join(s.dir, path)

	// Write to temp file first for atomic operation
	tempPath := target + tempSuffix
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write temp artifact %s: %w", path, err)
	}

	if err := os.Rename(tempPath, target); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save artifact %s: %w", path, err)
	}
	return nil
}

// Dir returns the directory artifacts are written to
func (s *FileSink) Dir() string {
	return s.dir
}

// ValidatePath rejects artifact paths that are not plain file names
func ValidatePath(path string) error {
	switch {
	case path == "", path == ".", path == "..":
		return fmt.Errorf("invalid artifact path %q", path)
	case strings.ContainsAny(path, `/\`):
		return fmt.Errorf("invalid artifact path %q: must not contain separators", path)
	case strings.HasSuffix(path, tempSuffix):
		return fmt.Errorf("invalid artifact path %q: reserved suffix", path)
	}
	return nil
}
