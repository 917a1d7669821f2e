package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agerrors "github.com/agrigpt/agrigraph/internal/errors"
)

// clearGraphEnv unsets the connection variables for the duration of a test.
// t.Setenv registers restoration; Unsetenv makes the variable truly absent so
// godotenv treats it as unset.
func clearGraphEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "bolt://127.0.0.1:7687", cfg.Graph.URI)
	assert.Equal(t, "neo4j", cfg.Graph.Database)
	assert.Equal(t, "neo4j", cfg.Graph.Username)
	assert.Empty(t, cfg.Graph.Password)

	assert.Equal(t, filepath.Join("graph", "csv"), cfg.Paths.CSVDir)
	assert.Equal(t, ".agrigraph", cfg.Paths.DataDir)
	assert.Equal(t, runtime.NumCPU(), cfg.Seed.Workers)

	// Pass-through parameters reserved for later phases.
	assert.Equal(t, 1500, cfg.Chunking.Size)
	assert.Equal(t, 200, cfg.Chunking.Overlap)

	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	clearGraphEnv(t)
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "bolt://127.0.0.1:7687", cfg.Graph.URI)
}

func TestLoad_ProjectYAMLOverridesDefaults(t *testing.T) {
	clearGraphEnv(t)
	dir := t.TempDir()
	yml := `
graph:
  uri: neo4j://graph.internal:7687
  database: agri
paths:
  csv_dir: seeds/csv
seed:
  workers: 2
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "neo4j://graph.internal:7687", cfg.Graph.URI)
	assert.Equal(t, "agri", cfg.Graph.Database)
	assert.Equal(t, "seeds/csv", cfg.Paths.CSVDir)
	assert.Equal(t, 2, cfg.Seed.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched fields keep defaults.
	assert.Equal(t, ".agrigraph", cfg.Paths.DataDir)
}

func TestLoad_DotenvProvidesSecrets(t *testing.T) {
	clearGraphEnv(t)
	dir := t.TempDir()
	env := "NEO4J_PASSWORD=hunter2\nNEO4J_USERNAME=agri\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Graph.Password)
	assert.Equal(t, "agri", cfg.Graph.Username)
}

func TestLoad_EnvBeatsDotenvAndYAML(t *testing.T) {
	clearGraphEnv(t)
	dir := t.TempDir()
	yml := "graph:\n  uri: bolt://from-yaml:7687\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(yml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NEO4J_URI=bolt://from-dotenv:7687\n"), 0o644))

	t.Setenv("NEO4J_URI", "bolt://from-env:7687")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "bolt://from-env:7687", cfg.Graph.URI)
}

func TestLoad_InvalidYAMLFailsFast(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("graph: ["), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, agerrors.ErrCodeConfigInvalid, agerrors.GetCode(err))
}

func TestValidate_RejectsBadURIScheme(t *testing.T) {
	cfg := NewConfig()
	cfg.Graph.URI = "http://localhost:7474"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme")
}

func TestValidate_RejectsBadLogLevel(t *testing.T) {
	cfg := NewConfig()
	cfg.Log.Level = "verbose"
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsZeroWorkers(t *testing.T) {
	cfg := NewConfig()
	cfg.Seed.Workers = 0
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsOverlapBeyondSize(t *testing.T) {
	cfg := NewConfig()
	cfg.Chunking.Size = 100
	cfg.Chunking.Overlap = 200
	require.Error(t, cfg.Validate())
}

func TestRenderYAML_ExcludesSecrets(t *testing.T) {
	cfg := NewConfig()
	cfg.Graph.Password = "hunter2"

	out, err := cfg.RenderYAML()
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "uri: bolt://127.0.0.1:7687")
}

func TestWriteYAML_RoundTrips(t *testing.T) {
	clearGraphEnv(t)
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Graph.Database = "agri"

	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "agri", loaded.Graph.Database)
}
