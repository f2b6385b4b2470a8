package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ha1tch/drugref/pkg/storage"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: drugref-migrate <source-graph.json> <target-db>")
		fmt.Println("Example: drugref-migrate ./graph.json ./drugref.db")
		os.Exit(1)
	}

	sourceFile := os.Args[1]
	targetDB := os.Args[2]

	if err := migrate(context.Background(), sourceFile, targetDB); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Migration completed successfully!")
}

// migrate copies a graph saved as an element list into a SQLite database
func migrate(ctx context.Context, sourceFile, targetDB string) error {
	if _, err := os.Stat(sourceFile); os.IsNotExist(err) {
		return fmt.Errorf("source file does not exist: %s", sourceFile)
	}

	if _, err := os.Stat(targetDB); err == nil {
		return fmt.Errorf("target database already exists: %s (delete it first)", targetDB)
	}

	fmt.Println("Opening source (JSONFile)...")
	sourceStore, err := storage.NewStore("jsonfile", map[string]interface{}{
		"path": sourceFile,
	})
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer sourceStore.Close()

	g, err := sourceStore.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	fmt.Println("Creating target (SQLite)...")
	targetStore, err := storage.NewStore("sqlite", map[string]interface{}{
		"db_path": targetDB,
	})
	if err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}
	defer targetStore.Close()

	if err := targetStore.SaveGraph(ctx, g); err != nil {
		return fmt.Errorf("failed to write target: %w", err)
	}

	fmt.Printf("\nMigration summary:\n")
	fmt.Printf("  Total nodes: %d\n", len(g.Nodes))
	fmt.Printf("  Total edges: %d\n", len(g.Edges))

	fmt.Println("\nVerifying...")
	copied, err := targetStore.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to read back target: %w", err)
	}
	if len(copied.Nodes) != len(g.Nodes) || len(copied.Edges) != len(g.Edges) {
		return fmt.Errorf("verification failed: copied %d nodes and %d edges, expected %d and %d",
			len(copied.Nodes), len(copied.Edges), len(g.Nodes), len(g.Edges))
	}
	fmt.Println("  Graph verified")

	return nil
}
