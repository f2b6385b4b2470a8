package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/ha1tch/drugref/pkg/models"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists nodes and edges in SQLite tables
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	config SQLiteConfig
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	DBPath      string
	EnableWAL   bool // Write-Ahead Logging
	CacheSize   int  // Page cache size in KB
	BusyTimeout int  // Milliseconds to wait on locked database
}

// NewSQLiteStore opens (or creates) the database and its schema
func NewSQLiteStore(config SQLiteConfig) (*SQLiteStore, error) {
	if config.DBPath == "" {
		config.DBPath = "drugref.db"
	}

	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// a single connection keeps pragmas and in-memory databases consistent
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{
		db:     db,
		config: config,
	}

	if err := store.initialize(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize applies pragmas and creates the tables
func (s *SQLiteStore) initialize(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA cache_size = -%d", s.config.CacheSize),
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.config.BusyTimeout),
	}
	if s.config.EnableWAL {
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}

	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			id INTEGER PRIMARY KEY,
			type TEXT NOT NULL,
			label TEXT NOT NULL
		);

		-- not unique: graphs reloaded from element lists have blank
		-- trial and publication labels
		CREATE INDEX IF NOT EXISTS idx_nodes_type_label ON nodes(type, label);

		CREATE TABLE IF NOT EXISTS edges (
			id INTEGER PRIMARY KEY,
			source INTEGER NOT NULL REFERENCES nodes(id),
			target INTEGER NOT NULL REFERENCES nodes(id),
			date TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source, target, date);
		CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);

		-- one row once a graph has been saved, so an empty graph can be told
		-- apart from no graph
		CREATE TABLE IF NOT EXISTS graph_state (
			singleton INTEGER PRIMARY KEY CHECK (singleton = 1),
			saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			nodes INTEGER NOT NULL,
			edges INTEGER NOT NULL,
			journal TEXT NOT NULL,
			journal_count INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Info returns store information
func (s *SQLiteStore) Info() StoreInfo {
	return StoreInfo{
		Type:           "sqlite",
		Version:        "1.0.0",
		KeepsEdgeDates: true,
		RecordsRuns:    true,
	}
}

// SaveGraph replaces the stored graph within one transaction
func (s *SQLiteStore) SaveGraph(ctx context.Context, g *models.Graph) error {
	if err := validateGraph(g); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM edges"); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes"); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, "INSERT INTO nodes (id, type, label) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer nodeStmt.Close()

	for _, n := range g.Nodes {
		if _, err := nodeStmt.ExecContext(ctx, n.ID, string(n.Type), n.Label); err != nil {
			return fmt.Errorf("failed to insert node %d: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, "INSERT INTO edges (id, source, target, date) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for _, e := range g.Edges {
		if _, err := edgeStmt.ExecContext(ctx, e.ID, e.Source, e.Target, e.Date); err != nil {
			return fmt.Errorf("failed to insert edge %d: %w", e.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO graph_state (singleton) VALUES (1)
		ON CONFLICT(singleton) DO UPDATE SET saved_at = CURRENT_TIMESTAMP
	`); err != nil {
		return fmt.Errorf("failed to mark graph saved: %w", err)
	}

	return tx.Commit()
}

// LoadGraph reads nodes and edges back in id order
func (s *SQLiteStore) LoadGraph(ctx context.Context) (*models.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var saved int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM graph_state").Scan(&saved)
	if err != nil {
		return nil, err
	}
	if saved == 0 {
		return nil, ErrNotFound
	}

	g := &models.Graph{Nodes: []models.Node{}, Edges: []models.Edge{}}

	rows, err := s.db.QueryContext(ctx, "SELECT id, type, label FROM nodes ORDER BY id")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var n models.Node
		var typ string
		if err := rows.Scan(&n.ID, &typ, &n.Label); err != nil {
			rows.Close()
			return nil, err
		}
		n.Type = models.NodeType(typ)
		g.Nodes = append(g.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, "SELECT id, source, target, date FROM edges ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.Date); err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, e)
	}

	return g, rows.Err()
}

// RecordRun stores the outcome of a build
func (s *SQLiteStore) RecordRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, nodes, edges, journal, journal_count)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Nodes, run.Edges, run.Journal, run.Count)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// LastRun returns the most recently recorded build
func (s *SQLiteStore) LastRun(ctx context.Context) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, nodes, edges, journal, journal_count
		FROM runs ORDER BY seq DESC LIMIT 1
	`).Scan(&run.ID, &run.Nodes, &run.Edges, &run.Journal, &run.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: no recorded runs", ErrNotFound)
	}
	return run, err
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
