package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ha1tch/drugref/pkg/graph"
	"github.com/ha1tch/drugref/pkg/models"
)

// JSONFileStore saves the graph as a JSON element list.
// The element format does not carry edge ids or dates.
type JSONFileStore struct {
	path string
	mu   sync.RWMutex
}

// NewJSONFileStore creates a store writing to path
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonfile store: empty path")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create graph directory: %w", err)
		}
	}
	return &JSONFileStore{path: path}, nil
}

// Info returns store information
func (s *JSONFileStore) Info() StoreInfo {
	return StoreInfo{
		Type:           "jsonfile",
		Version:        "1.0.0",
		KeepsEdgeDates: false,
		RecordsRuns:    false,
	}
}

// Path returns the file the graph is written to
func (s *JSONFileStore) Path() string {
	return s.path
}

// SaveGraph writes the graph elements, replacing the file atomically
func (s *JSONFileStore) SaveGraph(ctx context.Context, g *models.Graph) error {
	if err := validateGraph(g); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(graph.Elements(g))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempFile, s.path)
}

// LoadGraph reads the graph elements back
func (s *JSONFileStore) LoadGraph(ctx context.Context) (*models.Graph, error) {
	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()

	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, err
	}

	var elements []models.Element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return graph.FromElements(elements)
}

// Close closes the storage (no-op for file storage)
func (s *JSONFileStore) Close() error {
	return nil
}
