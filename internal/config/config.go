// Package config loads the agrigraph configuration convention: hardcoded
// defaults, a project YAML file, a .env file of secrets, then environment
// overrides, validated before use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	agerrors "github.com/agrigpt/agrigraph/internal/errors"
)

// ConfigFileName is the project configuration file.
const ConfigFileName = ".agrigraph.yaml"

// Config is the complete agrigraph configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Paths      PathsConfig      `yaml:"paths" json:"paths"`
	Graph      GraphConfig      `yaml:"graph" json:"graph"`
	Seed       SeedConfig       `yaml:"seed" json:"seed"`
	Chunking   ChunkingConfig   `yaml:"chunking" json:"chunking"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

// PathsConfig configures where seed data lives.
type PathsConfig struct {
	// MasterCSV is the combined reference sheet `seed split` reads.
	MasterCSV string `yaml:"master_csv" json:"master_csv"`
	// CSVDir holds the per-label node and relationship CSVs.
	CSVDir string `yaml:"csv_dir" json:"csv_dir"`
	// DataDir holds local state: the run ledger and lock files.
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// GraphConfig configures the graph store connection. Credentials never live
// in YAML; they are read from the environment (typically via .env).
type GraphConfig struct {
	URI      string `yaml:"uri" json:"uri"`
	Database string `yaml:"database" json:"database"`
	Username string `yaml:"-" json:"-"`
	Password string `yaml:"-" json:"-"`
}

// SeedConfig configures the seeding pipeline.
type SeedConfig struct {
	// Workers bounds concurrent CSV parsing during `seed load`.
	Workers int `yaml:"workers" json:"workers"`
}

// ChunkingConfig is pass-through configuration reserved for the document
// pipeline of later phases. It is carried, printed and validated for type
// only; nothing in this toolkit interprets it.
type ChunkingConfig struct {
	Size    int `yaml:"size" json:"size"`
	Overlap int `yaml:"overlap" json:"overlap"`
}

// EmbeddingsConfig is pass-through configuration reserved for later phases.
type EmbeddingsConfig struct {
	Provider   string `yaml:"provider" json:"provider"`
	Model      string `yaml:"model" json:"model"`
	Dimensions int    `yaml:"dimensions" json:"dimensions"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			MasterCSV: filepath.Join("data", "raw", "agri_master.csv"),
			CSVDir:    filepath.Join("graph", "csv"),
			DataDir:   ".agrigraph",
		},
		Graph: GraphConfig{
			URI:      "bolt://127.0.0.1:7687",
			Database: "neo4j",
			Username: "neo4j",
		},
		Seed: SeedConfig{
			Workers: runtime.NumCPU(),
		},
		Chunking: ChunkingConfig{
			Size:    1500,
			Overlap: 200,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the given directory, applying sources in
// order of increasing precedence:
//  1. Hardcoded defaults
//  2. Project config (.agrigraph.yaml / .yml)
//  3. .env file (does not override variables already set in the environment)
//  4. Environment variables (NEO4J_*, AGRIGRAPH_*)
//
// The merged result is validated; Load fails fast on an invalid configuration.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	// godotenv never overrides variables the process already has, so real
	// environment values keep precedence over .env entries.
	envPath := filepath.Join(dir, ".env")
	if fileExists(envPath) {
		if err := godotenv.Load(envPath); err != nil {
			return nil, agerrors.ConfigError(fmt.Sprintf("failed to load %s", envPath), err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile attempts .agrigraph.yaml then .agrigraph.yml. A missing file
// is fine; defaults apply.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{ConfigFileName, ".agrigraph.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return agerrors.ConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return agerrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Paths.MasterCSV != "" {
		c.Paths.MasterCSV = other.Paths.MasterCSV
	}
	if other.Paths.CSVDir != "" {
		c.Paths.CSVDir = other.Paths.CSVDir
	}
	if other.Paths.DataDir != "" {
		c.Paths.DataDir = other.Paths.DataDir
	}
	if other.Graph.URI != "" {
		c.Graph.URI = other.Graph.URI
	}
	if other.Graph.Database != "" {
		c.Graph.Database = other.Graph.Database
	}
	if other.Seed.Workers != 0 {
		c.Seed.Workers = other.Seed.Workers
	}
	if other.Chunking.Size != 0 {
		c.Chunking.Size = other.Chunking.Size
	}
	if other.Chunking.Overlap != 0 {
		c.Chunking.Overlap = other.Chunking.Overlap
	}
	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}
}

// applyEnvOverrides applies NEO4J_* connection variables and AGRIGRAPH_*
// overrides. NEO4J_USER is accepted as an alias for NEO4J_USERNAME.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Graph.URI = v
	}
	if v := os.Getenv("NEO4J_USERNAME"); v != "" {
		c.Graph.Username = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		c.Graph.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Graph.Password = v
	}
	if v := os.Getenv("NEO4J_DATABASE"); v != "" {
		c.Graph.Database = v
	}

	if v := os.Getenv("AGRIGRAPH_MASTER_CSV"); v != "" {
		c.Paths.MasterCSV = v
	}
	if v := os.Getenv("AGRIGRAPH_CSV_DIR"); v != "" {
		c.Paths.CSVDir = v
	}
	if v := os.Getenv("AGRIGRAPH_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("AGRIGRAPH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AGRIGRAPH_SEED_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Seed.Workers = n
		}
	}
}

// Validate checks the merged configuration and returns a coded error when a
// required field is missing or malformed.
func (c *Config) Validate() error {
	if c.Graph.URI == "" {
		return agerrors.ConfigError("graph.uri is required", nil)
	}
	scheme, _, ok := strings.Cut(c.Graph.URI, "://")
	validSchemes := map[string]bool{
		"bolt": true, "bolt+s": true, "bolt+ssc": true,
		"neo4j": true, "neo4j+s": true, "neo4j+ssc": true,
	}
	if !ok || !validSchemes[scheme] {
		return agerrors.ConfigError(
			fmt.Sprintf("graph.uri must use a bolt:// or neo4j:// scheme, got %s", c.Graph.URI), nil)
	}

	if c.Paths.CSVDir == "" {
		return agerrors.ConfigError("paths.csv_dir is required", nil)
	}
	if c.Paths.DataDir == "" {
		return agerrors.ConfigError("paths.data_dir is required", nil)
	}

	if c.Seed.Workers < 1 {
		return agerrors.ConfigError(
			fmt.Sprintf("seed.workers must be at least 1, got %d", c.Seed.Workers), nil)
	}

	if c.Chunking.Size < 0 || c.Chunking.Overlap < 0 {
		return agerrors.ConfigError("chunking values must be non-negative", nil)
	}
	if c.Chunking.Overlap > c.Chunking.Size && c.Chunking.Size > 0 {
		return agerrors.ConfigError(
			fmt.Sprintf("chunking.overlap (%d) must not exceed chunking.size (%d)",
				c.Chunking.Overlap, c.Chunking.Size), nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return agerrors.ConfigError(
			fmt.Sprintf("log.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Log.Level), nil)
	}

	return nil
}

// RenderYAML renders the merged configuration for `config show`. Credentials
// are excluded by their yaml:"-" tags.
func (c *Config) RenderYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", agerrors.ConfigError("failed to render config", err)
	}
	return string(data), nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return agerrors.ConfigError("failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return agerrors.ConfigError(fmt.Sprintf("failed to write config file %s", path), err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
