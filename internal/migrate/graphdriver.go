package migrate

import (
	"context"

	"github.com/agrigpt/agrigraph/internal/graph"
)

// GraphDriver adapts a graph.Store to the Driver interface. Schema statements
// auto-commit in the backing store, so Exec passes the store through directly;
// the applied revision is persisted on the store's migration record.
type GraphDriver struct {
	store graph.Store
}

var _ Driver[graph.Store] = (*GraphDriver)(nil)

// NewGraphDriver wraps an open store.
func NewGraphDriver(store graph.Store) *GraphDriver {
	return &GraphDriver{store: store}
}

func (d *GraphDriver) Version(ctx context.Context) (string, error) {
	return d.store.SchemaVersion(ctx)
}

func (d *GraphDriver) WriteVersion(ctx context.Context, store graph.Store, version, replaced string) error {
	return store.WriteSchemaVersion(ctx, version, replaced)
}

func (d *GraphDriver) Exec(ctx context.Context, f MigrationFunc[graph.Store]) error {
	return f(ctx, d.store)
}

// Close is a no-op; the store's lifetime belongs to the caller.
func (d *GraphDriver) Close(context.Context) error {
	return nil
}
