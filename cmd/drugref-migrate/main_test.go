package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/drugref/pkg/graph"
	"github.com/ha1tch/drugref/pkg/models"
	"github.com/ha1tch/drugref/pkg/storage"
)

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "graph.json")
	target := filepath.Join(dir, "drugref.db")
	ctx := context.Background()

	g, err := graph.Build(
		[]models.Drug{{ID: "1", Name: "ETHANOL"}},
		nil,
		[]models.Record{
			{ID: "6", Title: "Acute ethanol withdrawal", Date: "2020-01-01", Journal: "Psychopharmacology"},
			{ID: "7", Title: "Ethanol and sleep", Date: "2020-01-01", Journal: "Psychopharmacology"},
		},
	)
	require.NoError(t, err)

	jsonStore, err := storage.NewJSONFileStore(source)
	require.NoError(t, err)
	require.NoError(t, jsonStore.SaveGraph(ctx, g))

	require.NoError(t, migrate(ctx, source, target))

	sqliteStore, err := storage.NewSQLiteStore(storage.SQLiteConfig{DBPath: target})
	require.NoError(t, err)
	defer sqliteStore.Close()

	copied, err := sqliteStore.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, copied.Nodes, len(g.Nodes))
	assert.Len(t, copied.Edges, len(g.Edges))

	// refuses to overwrite
	assert.Error(t, migrate(ctx, source, target))
}

func TestMigrate_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := migrate(context.Background(), filepath.Join(dir, "nope.json"), filepath.Join(dir, "x.db"))
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "x.db"))
	assert.True(t, os.IsNotExist(statErr))
}
