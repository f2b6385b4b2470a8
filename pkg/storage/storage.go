package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ha1tch/drugref/pkg/models"
)

var (
	// ErrNotFound is returned when no graph has been saved yet
	ErrNotFound = errors.New("graph not found")
	// ErrInvalidGraph is returned when a graph cannot be persisted as given
	ErrInvalidGraph = errors.New("invalid graph")
)

// Store defines the interface for graph persistence backends.
// Every save replaces the previously saved graph.
type Store interface {
	SaveGraph(ctx context.Context, g *models.Graph) error
	LoadGraph(ctx context.Context) (*models.Graph, error)

	// Lifecycle
	Close() error
}

// RunRecorder defines optional build run bookkeeping
type RunRecorder interface {
	RecordRun(ctx context.Context, run Run) error
	LastRun(ctx context.Context) (Run, error)
}

// Run describes one build
type Run struct {
	ID      string
	Nodes   int
	Edges   int
	Journal string
	Count   int
}

// StoreInfo provides metadata about the store implementation
type StoreInfo struct {
	Type           string // "jsonfile" or "sqlite"
	Version        string
	KeepsEdgeDates bool
	RecordsRuns    bool
}

// InfoProvider allows stores to provide metadata about their capabilities
type InfoProvider interface {
	Info() StoreInfo
}

// validateGraph checks that edges only reference nodes of the graph
func validateGraph(g *models.Graph) error {
	if g == nil {
		return ErrInvalidGraph
	}
	ids := make(map[int]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return fmt.Errorf("%w: edge %d references an unknown node", ErrInvalidGraph, e.ID)
		}
	}
	return nil
}
