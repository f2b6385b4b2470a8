package graph

import (
	"errors"
	"sync"

	"github.com/ha1tch/drugref/pkg/models"
)

var (
	// ErrEmptyInput is returned when there is nothing to build or analyze
	ErrEmptyInput = errors.New("empty input")
	// ErrLookupMiss is returned when a node expected in the store is absent
	ErrLookupMiss = errors.New("node lookup miss")
)

type nodeKey struct {
	typ   models.NodeType
	label string
}

type edgeKey struct {
	source int
	target int
	date   string
}

// Store is an append-only collection of nodes and edges.
// At most one node exists per (type, label) and at most one edge per
// (source, target, date). Ids are sequential from 0 and never reused.
type Store struct {
	nodes     []models.Node
	edges     []models.Edge
	nodeIndex map[nodeKey]int
	edgeIndex map[edgeKey]int
	mu        sync.RWMutex
}

// NewStore creates an empty graph store
func NewStore() *Store {
	return &Store{
		nodeIndex: make(map[nodeKey]int),
		edgeIndex: make(map[edgeKey]int),
	}
}

// CreateNode adds a node unless one with the same type and label exists.
// It returns the node id and whether the node was created by this call.
func (s *Store) CreateNode(typ models.NodeType, label string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nodeKey{typ: typ, label: label}
	if id, exists := s.nodeIndex[key]; exists {
		return id, false
	}

	id := len(s.nodes)
	s.nodes = append(s.nodes, models.Node{ID: id, Type: typ, Label: label})
	s.nodeIndex[key] = id
	return id, true
}

// CreateEdge adds an edge unless one with the same source, target and date exists
func (s *Store) CreateEdge(source, target int, date string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey{source: source, target: target, date: date}
	if id, exists := s.edgeIndex[key]; exists {
		return id, false
	}

	id := len(s.edges)
	s.edges = append(s.edges, models.Edge{ID: id, Source: source, Target: target, Date: date})
	s.edgeIndex[key] = id
	return id, true
}

// FindNode returns the id of the node with the given type and label
func (s *Store) FindNode(typ models.NodeType, label string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.nodeIndex[nodeKey{typ: typ, label: label}]
	return id, ok
}

// FindEdge returns the id of the edge with the given endpoints and date
func (s *Store) FindEdge(source, target int, date string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.edgeIndex[edgeKey{source: source, target: target, date: date}]
	return id, ok
}

// Nodes returns a copy of the nodes in creation order
func (s *Store) Nodes() []models.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns a copy of the edges in creation order
func (s *Store) Edges() []models.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// NodeCount returns the number of nodes in the store
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of edges in the store
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Graph returns a snapshot of the store contents
func (s *Store) Graph() *models.Graph {
	return &models.Graph{
		Nodes: s.Nodes(),
		Edges: s.Edges(),
	}
}
