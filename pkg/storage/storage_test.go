package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ha1tch/drugref/pkg/models"
	"github.com/ha1tch/drugref/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph() *models.Graph {
	return &models.Graph{
		Nodes: []models.Node{
			{ID: 0, Type: models.NodeDrug, Label: "DIPHENHYDRAMINE"},
			{ID: 1, Type: models.NodeTrial, Label: "Use of Diphenhydramine as an Adjunctive Sedative"},
			{ID: 2, Type: models.NodeJournal, Label: "Journal of emergency nursing"},
			{ID: 3, Type: models.NodePubmed, Label: "An evaluation of diphenhydramine"},
		},
		Edges: []models.Edge{
			{ID: 0, Source: 0, Target: 1, Date: "1 January 2020"},
			{ID: 1, Source: 0, Target: 2, Date: "1 January 2020"},
			{ID: 2, Source: 0, Target: 3, Date: "01/01/2019"},
			{ID: 3, Source: 0, Target: 2, Date: "01/01/2019"},
		},
	}
}

func setupJSONStore(t *testing.T) (storage.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out", "graph.json")
	store, err := storage.NewStore("jsonfile", map[string]interface{}{"path": path})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, path
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"jsonfile", "sqlite"}, storage.ListStores())

	_, err := storage.NewStore("postgres", nil)
	assert.Error(t, err)
}

func TestJSONFileStore_SaveLoad(t *testing.T) {
	store, path := setupJSONStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGraph(ctx, testGraph()))

	_, err := os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)

	require.Len(t, loaded.Nodes, 4)
	assert.Equal(t, "DIPHENHYDRAMINE", loaded.Nodes[0].Label)
	assert.Equal(t, "", loaded.Nodes[1].Label)
	assert.Equal(t, "Journal of emergency nursing", loaded.Nodes[2].Label)

	require.Len(t, loaded.Edges, 4)
	for i, e := range loaded.Edges {
		assert.Equal(t, testGraph().Edges[i].Source, e.Source)
		assert.Equal(t, testGraph().Edges[i].Target, e.Target)
		assert.Equal(t, "", e.Date)
	}
}

func TestJSONFileStore_ElementFormat(t *testing.T) {
	store, path := setupJSONStore(t)
	require.NoError(t, store.SaveGraph(context.Background(), testGraph()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), `{"data":{"id":"0","label":"DIPHENHYDRAMINE","classes":"drug"}}`)
	assert.Contains(t, string(data), `{"data":{"id":"1","label":"","classes":"trial"}}`)
	assert.Contains(t, string(data), `{"data":{"source":"0","target":"2","label":"","classes":"edge"}}`)
}

func TestJSONFileStore_NotFound(t *testing.T) {
	store, _ := setupJSONStore(t)

	_, err := store.LoadGraph(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJSONFileStore_RejectsDanglingEdge(t *testing.T) {
	store, _ := setupJSONStore(t)
	g := testGraph()
	g.Edges = append(g.Edges, models.Edge{ID: 4, Source: 0, Target: 99, Date: "x"})

	err := store.SaveGraph(context.Background(), g)
	assert.ErrorIs(t, err, storage.ErrInvalidGraph)
	assert.ErrorIs(t, store.SaveGraph(context.Background(), nil), storage.ErrInvalidGraph)
}

func TestJSONFileStore_Info(t *testing.T) {
	store, _ := setupJSONStore(t)

	info := store.(storage.InfoProvider).Info()
	assert.Equal(t, "jsonfile", info.Type)
	assert.False(t, info.KeepsEdgeDates)

	_, ok := store.(storage.RunRecorder)
	assert.False(t, ok)
}
