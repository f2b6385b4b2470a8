package graph_test

import (
	"testing"

	"github.com/ha1tch/drugref/pkg/graph"
	"github.com/ha1tch/drugref/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateNode(t *testing.T) {
	s := graph.NewStore()

	t.Run("sequential ids", func(t *testing.T) {
		id0, created := s.CreateNode(models.NodeDrug, "ASPIRIN")
		require.True(t, created)
		id1, created := s.CreateNode(models.NodeJournal, "The Lancet")
		require.True(t, created)

		assert.Equal(t, 0, id0)
		assert.Equal(t, 1, id1)
	})

	t.Run("same type and label is idempotent", func(t *testing.T) {
		before := s.NodeCount()
		id, created := s.CreateNode(models.NodeDrug, "ASPIRIN")
		assert.False(t, created)
		assert.Equal(t, 0, id)
		assert.Equal(t, before, s.NodeCount())
	})

	t.Run("identity is case-sensitive", func(t *testing.T) {
		_, created := s.CreateNode(models.NodeDrug, "Aspirin")
		assert.True(t, created)
	})

	t.Run("same label different type is a new node", func(t *testing.T) {
		_, created := s.CreateNode(models.NodeTrial, "ASPIRIN")
		assert.True(t, created)
	})

	assert.Equal(t, 4, s.NodeCount())
}

func TestStore_CreateEdge(t *testing.T) {
	s := graph.NewStore()

	id, created := s.CreateEdge(0, 1, "2020-01-01")
	require.True(t, created)
	assert.Equal(t, 0, id)

	for i := 0; i < 3; i++ {
		dup, created := s.CreateEdge(0, 1, "2020-01-01")
		assert.False(t, created)
		assert.Equal(t, id, dup)
	}
	assert.Equal(t, 1, s.EdgeCount())

	other, created := s.CreateEdge(0, 1, "2021-01-01")
	assert.True(t, created)
	assert.Equal(t, 1, other)

	reversed, created := s.CreateEdge(1, 0, "2020-01-01")
	assert.True(t, created)
	assert.Equal(t, 2, reversed)
}

func TestStore_Find(t *testing.T) {
	s := graph.NewStore()
	nodeID, _ := s.CreateNode(models.NodePubmed, "A 44-year-old man with erythema")
	edgeID, _ := s.CreateEdge(3, nodeID, "01/01/2019")

	id, ok := s.FindNode(models.NodePubmed, "A 44-year-old man with erythema")
	assert.True(t, ok)
	assert.Equal(t, nodeID, id)

	_, ok = s.FindNode(models.NodeTrial, "A 44-year-old man with erythema")
	assert.False(t, ok)

	id, ok = s.FindEdge(3, nodeID, "01/01/2019")
	assert.True(t, ok)
	assert.Equal(t, edgeID, id)

	_, ok = s.FindEdge(3, nodeID, "02/01/2019")
	assert.False(t, ok)
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s := graph.NewStore()
	s.CreateNode(models.NodeDrug, "ETHANOL")
	s.CreateEdge(0, 0, "d")

	nodes := s.Nodes()
	nodes[0].Label = "changed"
	edges := s.Edges()
	edges[0].Date = "changed"

	g := s.Graph()
	assert.Equal(t, "ETHANOL", g.Nodes[0].Label)
	assert.Equal(t, "d", g.Edges[0].Date)
}
