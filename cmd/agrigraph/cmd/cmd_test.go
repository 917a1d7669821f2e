package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrigpt/agrigraph/internal/config"
	"github.com/agrigpt/agrigraph/internal/graph"
)

// clearGraphEnv makes connection variables absent so tests are hermetic.
// t.Setenv registers restoration; Unsetenv makes the variable truly unset
// rather than present-but-empty.
func clearGraphEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE"} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

// newProject creates a project directory whose config keeps all state inside
// the test's temp space.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	yaml := fmt.Sprintf(`version: 1
paths:
  master_csv: %s
  csv_dir: %s
  data_dir: %s
`,
		filepath.Join(dir, "master.csv"),
		filepath.Join(dir, "csv"),
		filepath.Join(dir, "state"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(yaml), 0o644))
	return dir
}

// execute runs the CLI with the given store injected, returning combined
// output.
func execute(t *testing.T, store graph.Store, args ...string) (string, error) {
	t.Helper()
	clearGraphEnv(t)

	orig := newStore
	newStore = func(context.Context, *config.Config) (graph.Store, error) {
		return store, nil
	}
	t.Cleanup(func() { newStore = orig })

	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestSchemaApply_MigratesToHead(t *testing.T) {
	dir := newProject(t)
	store := graph.NewMemoryStore()

	out, err := execute(t, store, "schema", "apply", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "backfill-crop-slugs")

	assert.Len(t, store.ConstraintNames(), 5)
	assert.Len(t, store.IndexNames(), 2)
	assert.True(t, store.HasFulltextIndex("cropFulltext"))

	// second apply is a no-op
	_, err = execute(t, store, "schema", "apply", "--dir", dir)
	require.NoError(t, err)
}

func TestSchemaApply_DryRunTouchesNothing(t *testing.T) {
	dir := newProject(t)
	store := graph.NewMemoryStore()

	out, err := execute(t, store, "schema", "apply", "--dry-run", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")
	assert.Empty(t, store.ConstraintNames())
}

func TestSchemaApply_PartialRevision(t *testing.T) {
	dir := newProject(t)
	store := graph.NewMemoryStore()

	_, err := execute(t, store, "schema", "apply", "--to", "add-identity-constraints", "--dir", dir)
	require.NoError(t, err)
	assert.Len(t, store.ConstraintNames(), 5)
	assert.Empty(t, store.IndexNames())
}

func TestSchemaStatus(t *testing.T) {
	dir := newProject(t)
	store := graph.NewMemoryStore()

	out, err := execute(t, store, "schema", "status", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "schema apply")

	_, err = execute(t, store, "schema", "apply", "--dir", dir)
	require.NoError(t, err)

	out, err = execute(t, store, "schema", "status", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

const testMaster = `Crop_BN,Crop_EN,Crop_Type,Variety_BN,Variety_EN
বোরো ধান,Boro Rice,Cereals,ব্রি ধান২৮,BRRI dhan28
গম,Wheat,Cereals,,
`

func TestSeedPipeline_EndToEnd(t *testing.T) {
	dir := newProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "master.csv"), []byte(testMaster), 0o644))
	store := graph.NewMemoryStore()

	out, err := execute(t, store, "seed", "split", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "crops=2")

	out, err = execute(t, store, "seed", "load", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "load complete")

	out, err = execute(t, store, "seed", "aliases", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "alias links")

	out, err = execute(t, store, "resolve", "বোরো", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Boro Rice")
}

func TestResolve_NotFound(t *testing.T) {
	dir := newProject(t)
	store := graph.NewMemoryStore()

	_, err := execute(t, store, "resolve", "mango", "--dir", dir)
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestBackfillSlugs(t *testing.T) {
	dir := newProject(t)
	store := graph.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.UpsertCrop(ctx, graph.Crop{ID: "crop:boro-rice", NameEN: "Boro Rice"}))

	out, err := execute(t, store, "backfill", "slugs", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 crops")

	c, err := store.FindCropExact(ctx, "boro-rice")
	require.NoError(t, err)
	assert.Equal(t, "boro-rice", c.Slug)
}

func TestConfigPrint(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, graph.NewMemoryStore(), "config", "--print", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "uri: bolt://127.0.0.1:7687")
	assert.Contains(t, out, "master_csv")
	assert.NotContains(t, out, "password")
}

func TestConfigPrint_InvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName),
		[]byte("graph:\n  uri: http://wrong\n"), 0o644))

	_, err := execute(t, graph.NewMemoryStore(), "config", "--print", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme")
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, graph.NewMemoryStore(), "config", "init", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")
	assert.FileExists(t, filepath.Join(dir, config.ConfigFileName))
	assert.FileExists(t, filepath.Join(dir, ".env"))

	// existing files are left alone without --force
	out, err = execute(t, graph.NewMemoryStore(), "config", "init", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "skipping")
}

func TestStatus_RecordsRuns(t *testing.T) {
	dir := newProject(t)
	store := graph.NewMemoryStore()

	out, err := execute(t, store, "status", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "no runs recorded")

	_, err = execute(t, store, "schema", "apply", "--dir", dir)
	require.NoError(t, err)

	out, err = execute(t, store, "status", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "schema apply")
	assert.Contains(t, out, "ok")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, graph.NewMemoryStore(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "agrigraph")
	assert.Contains(t, out, "commit")
}
