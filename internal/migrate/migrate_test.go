package migrate

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrigpt/agrigraph/internal/graph"
)

// fakeDriver records versions in memory and counts executed steps.
type fakeDriver struct {
	version  string
	executed []string
}

func (d *fakeDriver) Version(context.Context) (string, error) { return d.version, nil }

func (d *fakeDriver) WriteVersion(_ context.Context, _ *fakeDriver, version, _ string) error {
	d.version = version
	d.executed = append(d.executed, version)
	return nil
}

func (d *fakeDriver) Exec(ctx context.Context, f MigrationFunc[*fakeDriver]) error {
	return f(ctx, d)
}

func (d *fakeDriver) Close(context.Context) error { return nil }

func newFakeManager(t *testing.T) *Manager[*fakeDriver, *fakeDriver] {
	t.Helper()
	m := NewManager[*fakeDriver, *fakeDriver]()
	noop := func(context.Context, *fakeDriver) error { return nil }
	require.NoError(t, m.Register("one", None, noop))
	require.NoError(t, m.Register("two", "one", noop))
	require.NoError(t, m.Register("three", "two", noop))
	return m
}

func TestManager_HeadRevision(t *testing.T) {
	m := newFakeManager(t)
	head, err := m.HeadRevision()
	require.NoError(t, err)
	assert.Equal(t, "three", head)
}

func TestManager_RegisterRejectsDuplicatesAndHead(t *testing.T) {
	m := newFakeManager(t)
	noop := func(context.Context, *fakeDriver) error { return nil }
	assert.Error(t, m.Register("two", "one", noop))
	assert.Error(t, m.Register("head", "three", noop))
}

func TestManager_RunToHeadExecutesInOrder(t *testing.T) {
	m := newFakeManager(t)
	d := &fakeDriver{}

	require.NoError(t, m.Run(context.Background(), d, Head, LiveRun))
	assert.Equal(t, []string{"one", "two", "three"}, d.executed)
	assert.Equal(t, "three", d.version)
}

func TestManager_RunIsIdempotent(t *testing.T) {
	m := newFakeManager(t)
	d := &fakeDriver{}

	require.NoError(t, m.Run(context.Background(), d, Head, LiveRun))
	require.NoError(t, m.Run(context.Background(), d, Head, LiveRun))
	assert.Equal(t, []string{"one", "two", "three"}, d.executed, "second run must plan zero steps")
}

func TestManager_RunPartialThenToHead(t *testing.T) {
	m := newFakeManager(t)
	d := &fakeDriver{}

	require.NoError(t, m.Run(context.Background(), d, "two", LiveRun))
	assert.Equal(t, "two", d.version)

	require.NoError(t, m.Run(context.Background(), d, Head, LiveRun))
	assert.Equal(t, []string{"one", "two", "three"}, d.executed)
}

func TestManager_DryRunExecutesNothing(t *testing.T) {
	m := newFakeManager(t)
	d := &fakeDriver{}

	require.NoError(t, m.Run(context.Background(), d, Head, DryRun))
	assert.Empty(t, d.executed)
	assert.Equal(t, None, d.version)
}

func TestManager_RunUnknownRevisionFails(t *testing.T) {
	m := newFakeManager(t)
	d := &fakeDriver{}
	assert.Error(t, m.Run(context.Background(), d, "nine", LiveRun))
}

func TestManager_FailingStepStopsChain(t *testing.T) {
	m := NewManager[*fakeDriver, *fakeDriver]()
	noop := func(context.Context, *fakeDriver) error { return nil }
	require.NoError(t, m.Register("one", None, noop))
	require.NoError(t, m.Register("two", "one", func(context.Context, *fakeDriver) error {
		return fmt.Errorf("boom")
	}))
	require.NoError(t, m.Register("three", "two", noop))

	d := &fakeDriver{}
	err := m.Run(context.Background(), d, Head, LiveRun)
	require.Error(t, err)
	assert.Equal(t, "one", d.version, "failed step must not record its revision")
}

func TestManager_IsHeadCompatible(t *testing.T) {
	m := newFakeManager(t)

	ok, err := m.IsHeadCompatible("three")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.IsHeadCompatible("two")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.IsHeadCompatible("one")
	require.NoError(t, err)
	assert.False(t, ok)
}

// The registry chain applied to the in-memory store is the end-to-end shape of
// `schema apply`.
func TestRegistry_AppliesFullSchemaToMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	require.NoError(t, store.UpsertCrop(ctx, graph.Crop{ID: "crop:boro", NameEN: "Boro Rice"}))

	m, err := Registry()
	require.NoError(t, err)

	driver := NewGraphDriver(store)
	require.NoError(t, m.Run(ctx, driver, Head, LiveRun))

	assert.Equal(t,
		[]string{"crop_id", "disease_id", "fertilizer_id", "practice_id", "variety_id"},
		store.ConstraintNames())
	assert.Equal(t, []string{"crop_name_en", "variety_name_en"}, store.IndexNames())
	assert.True(t, store.HasFulltextIndex("cropFulltext"))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, RevisionBackfillCropSlugs, version)

	crop, err := store.FindCropExact(ctx, "boro-rice")
	require.NoError(t, err)
	assert.Equal(t, "crop:boro", crop.ID)

	// Applying the full set twice produces the same schema with no errors.
	require.NoError(t, m.Run(ctx, driver, Head, LiveRun))
	assert.Len(t, store.ConstraintNames(), 5)
}
