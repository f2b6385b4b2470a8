package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const Version = "0.3.0"

// Config holds application configuration
type Config struct {
	// Input configuration
	DataDir    string `yaml:"data_dir"`
	DrugsFile  string `yaml:"drugs_file"`
	TrialsFile string `yaml:"trials_file"`
	PubmedCSV  string `yaml:"pubmed_csv"`
	PubmedJSON string `yaml:"pubmed_json"`
	// MergedPubmedFile, when set, receives every loaded publication as CSV
	MergedPubmedFile string `yaml:"merged_pubmed_file"`

	// Storage configuration
	StorageType string `yaml:"storage_type"` // "jsonfile" or "sqlite"
	GraphFile   string `yaml:"graph_file"`
	DBPath      string `yaml:"db_path"`

	// Cache configuration
	CacheType string `yaml:"cache_type"` // "memory" or "redis"
	CacheTTL  int    `yaml:"cache_ttl"`  // seconds
	CacheSize int    `yaml:"cache_size"`
	RedisHost string `yaml:"redis_host"`
	RedisPort int    `yaml:"redis_port"`

	// Server configuration
	Serve           bool   `yaml:"serve"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	DefaultPageSize int    `yaml:"default_page_size"`

	// Debug
	Debug bool `yaml:"debug"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		DataDir:         "data",
		DrugsFile:       "drugs.csv",
		TrialsFile:      "clinical_trials.csv",
		PubmedCSV:       "pubmed.csv",
		PubmedJSON:      "pubmed.json",
		StorageType:     "jsonfile",
		GraphFile:       "graph.json",
		DBPath:          "drugref.db",
		CacheType:       "memory",
		CacheTTL:        300,
		CacheSize:       256,
		RedisHost:       "localhost",
		RedisPort:       6379,
		Serve:           false,
		Host:            "0.0.0.0",
		Port:            9090,
		DefaultPageSize: 50,
		Debug:           false,
	}
}

// LoadFromFile overlays a YAML file on cfg. Keys absent from the file keep
// their current values.
func LoadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv(cfg *Config) {
	if val := os.Getenv("DATA_DIR"); val != "" {
		cfg.DataDir = val
	}
	if val := os.Getenv("DRUGS_FILE"); val != "" {
		cfg.DrugsFile = val
	}
	if val := os.Getenv("TRIALS_FILE"); val != "" {
		cfg.TrialsFile = val
	}
	if val := os.Getenv("PUBMED_CSV"); val != "" {
		cfg.PubmedCSV = val
	}
	if val := os.Getenv("PUBMED_JSON"); val != "" {
		cfg.PubmedJSON = val
	}
	if val := os.Getenv("MERGED_PUBMED_FILE"); val != "" {
		cfg.MergedPubmedFile = val
	}
	if val := os.Getenv("STORAGE_TYPE"); val != "" {
		cfg.StorageType = val
	}
	if val := os.Getenv("GRAPH_FILE"); val != "" {
		cfg.GraphFile = val
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		cfg.DBPath = val
	}
	if val := os.Getenv("CACHE_TYPE"); val != "" {
		cfg.CacheType = val
	}
	if val := os.Getenv("CACHE_TTL"); val != "" {
		if ttl, err := strconv.Atoi(val); err == nil {
			cfg.CacheTTL = ttl
		}
	}
	if val := os.Getenv("CACHE_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			cfg.CacheSize = size
		}
	}
	if val := os.Getenv("REDIS_HOST"); val != "" {
		cfg.RedisHost = val
	}
	if val := os.Getenv("REDIS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.RedisPort = port
		}
	}
	if val := os.Getenv("SERVE"); val != "" {
		cfg.Serve = parseBool(val)
	}
	if val := os.Getenv("HOST"); val != "" {
		cfg.Host = val
	}
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Port = port
		}
	}
	if val := os.Getenv("DEBUG"); val != "" {
		cfg.Debug = parseBool(val)
	}
}

// InputPath resolves an input file name against DataDir.
// Empty names stay empty and absolute paths are kept.
func (c *Config) InputPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func parseBool(val string) bool {
	val = strings.ToLower(val)
	return val == "true" || val == "1" || val == "yes"
}
