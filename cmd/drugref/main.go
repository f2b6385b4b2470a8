package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ha1tch/drugref/pkg/cache"
	"github.com/ha1tch/drugref/pkg/config"
	"github.com/ha1tch/drugref/pkg/graph"
	"github.com/ha1tch/drugref/pkg/loader"
	"github.com/ha1tch/drugref/pkg/models"
	"github.com/ha1tch/drugref/pkg/server"
	"github.com/ha1tch/drugref/pkg/storage"
	"github.com/ha1tch/drugref/pkg/validation"
)

// result is what one pipeline run produced
type result struct {
	RunID   string
	Graph   *models.Graph
	Top     models.JournalStat
	HasTop  bool
	Dropped int
}

func main() {
	configFile := flag.String("config", "", "Path to a YAML configuration file")
	serve := flag.Bool("serve", false, "Serve the graph over HTTP after building it")
	flag.Parse()

	// Setup logger
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Logger().
		Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	// Load configuration
	cfg := config.Default()
	if *configFile != "" {
		if err := config.LoadFromFile(*configFile, cfg); err != nil {
			logger.Fatal().Err(err).Msg("Failed to load configuration")
		}
	}
	config.LoadFromEnv(cfg)
	if *serve {
		cfg.Serve = true
	}

	if cfg.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	printSummary(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer store.Close()

	if infoProvider, ok := store.(storage.InfoProvider); ok {
		info := infoProvider.Info()
		logger.Info().
			Str("type", info.Type).
			Str("version", info.Version).
			Bool("keeps_edge_dates", info.KeepsEdgeDates).
			Bool("records_runs", info.RecordsRuns).
			Msg("Storage initialized")
	}

	res, err := run(ctx, cfg, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Build failed")
	}

	if res.HasTop {
		fmt.Println(res.Top.Journal)
		fmt.Println(res.Top.References)
	}

	if !cfg.Serve {
		return
	}

	cacheInstance := openCache(cfg, logger)
	defer cacheInstance.Close()

	srv := server.New(cfg, res.Graph, cacheInstance, logger)

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shut down server")
		}
	}()

	logger.Info().Msg("Server ready to accept requests")
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// run loads the inputs, builds and saves the graph and computes the top journal
func run(ctx context.Context, cfg *config.Config, store storage.Store, logger zerolog.Logger) (*result, error) {
	res := &result{RunID: uuid.NewString()}
	logger = logger.With().Str("run_id", res.RunID).Logger()

	paths := loader.Paths{
		Drugs:      cfg.InputPath(cfg.DrugsFile),
		Trials:     cfg.InputPath(cfg.TrialsFile),
		PubmedCSV:  cfg.InputPath(cfg.PubmedCSV),
		PubmedJSON: cfg.InputPath(cfg.PubmedJSON),
	}

	ds, err := loader.LoadAll(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load inputs: %w", err)
	}
	for _, issue := range ds.Issues {
		logger.Warn().Err(issue).Msg("Dropped input row")
	}
	res.Dropped = len(ds.Issues)

	logger.Info().
		Int("drugs", len(ds.Drugs)).
		Int("trials", len(ds.Trials)).
		Int("publications", len(ds.Publications)).
		Msg("Inputs loaded")

	if cfg.MergedPubmedFile != "" {
		if err := loader.WritePublicationsCSV(cfg.MergedPubmedFile, ds.Publications); err != nil {
			return nil, fmt.Errorf("failed to write merged publications: %w", err)
		}
		logger.Info().Str("path", cfg.MergedPubmedFile).Msg("Merged publications written")
	}

	builder := graph.NewBuilder(validation.NewFieldValidator(), logger)
	g, err := builder.Build(ds.Drugs, ds.Trials, ds.Publications)
	if err != nil {
		return nil, err
	}
	res.Graph = g

	if stats := builder.Stats(); stats.LookupMisses > 0 {
		logger.Warn().Int("lookup_misses", stats.LookupMisses).Msg("Some references were not linked")
	}

	if err := store.SaveGraph(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to save graph: %w", err)
	}
	logger.Info().Msg("Graph saved")

	top, err := graph.MostReferencingJournal(g.Nodes, g.Edges)
	switch {
	case errors.Is(err, graph.ErrEmptyInput):
		logger.Warn().Err(err).Msg("No journal to rank")
	case err != nil:
		return nil, err
	default:
		res.Top = top
		res.HasTop = true
		logger.Info().
			Str("journal", top.Journal).
			Int("references", top.References).
			Msg("Journal referencing the most drugs")
	}

	if recorder, ok := store.(storage.RunRecorder); ok {
		err := recorder.RecordRun(ctx, storage.Run{
			ID:      res.RunID,
			Nodes:   len(g.Nodes),
			Edges:   len(g.Edges),
			Journal: res.Top.Journal,
			Count:   res.Top.References,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Failed to record run")
		}
	}

	return res, nil
}

// openStore creates the configured storage backend
func openStore(cfg *config.Config) (storage.Store, error) {
	var storeConfig map[string]interface{}

	if cfg.StorageType == "sqlite" {
		storeConfig = map[string]interface{}{
			"db_path": cfg.DBPath,
		}
	} else {
		storeConfig = map[string]interface{}{
			"path": cfg.GraphFile,
		}
	}

	return storage.NewStore(cfg.StorageType, storeConfig)
}

// openCache creates the response cache, falling back to memory when Redis
// is unreachable
func openCache(cfg *config.Config, logger zerolog.Logger) cache.Cache {
	ttl := time.Duration(cfg.CacheTTL) * time.Second

	if cfg.CacheType == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, ttl, "drugref:")
		if err == nil {
			logger.Info().Msg("Using Redis cache")
			return redisCache
		}
		logger.Warn().Err(err).Msg("Failed to connect to Redis, falling back to memory cache")
	}

	logger.Info().Msg("Using in-memory cache")
	return cache.NewMemoryCache(cfg.CacheSize, ttl)
}

func printSummary(cfg *config.Config) {
	fmt.Println("//////////////////////////// drugref " + config.Version + " ////////////////////////////")
	fmt.Println("----------------------------------------------------------------------")
	fmt.Println("Inputs:")
	fmt.Printf("  Data dir: %s\n", cfg.DataDir)
	fmt.Printf("  Drugs: %s\n", cfg.DrugsFile)
	fmt.Printf("  Trials: %s\n", cfg.TrialsFile)
	fmt.Printf("  PubMed: %s, %s\n", cfg.PubmedCSV, cfg.PubmedJSON)
	fmt.Println()
	fmt.Println("Storage:")
	fmt.Printf("  Type: %s\n", cfg.StorageType)
	if cfg.StorageType == "sqlite" {
		fmt.Printf("  Database: %s\n", cfg.DBPath)
	} else {
		fmt.Printf("  Graph file: %s\n", cfg.GraphFile)
	}
	if cfg.Serve {
		fmt.Println()
		fmt.Println("Server:")
		fmt.Printf("  Address: %s:%d\n", cfg.Host, cfg.Port)
		fmt.Printf("  Cache: %s (%d seconds)\n", cfg.CacheType, cfg.CacheTTL)
	}
	fmt.Println("----------------------------------------------------------------------")
	fmt.Println()
}
