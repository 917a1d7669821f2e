package migrate

import (
	"context"
	"log/slog"

	"github.com/agrigpt/agrigraph/internal/graph"
)

// Revision names, in chain order. Constraints and indexes are declared before
// the backfill because the backfill depends on node shape being settled.
const (
	RevisionIdentityConstraints = "add-identity-constraints"
	RevisionNameIndexes         = "add-name-indexes"
	RevisionCropFulltext        = "add-crop-fulltext"
	RevisionBackfillCropSlugs   = "backfill-crop-slugs"
)

// Registry returns the manager with all schema migrations registered.
func Registry() (*Manager[*GraphDriver, graph.Store], error) {
	m := NewManager[*GraphDriver, graph.Store]()

	if err := m.Register(RevisionIdentityConstraints, None,
		func(ctx context.Context, store graph.Store) error {
			for _, spec := range graph.IdentityConstraints() {
				if err := store.ApplyConstraint(ctx, spec); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return nil, err
	}

	if err := m.Register(RevisionNameIndexes, RevisionIdentityConstraints,
		func(ctx context.Context, store graph.Store) error {
			for _, spec := range graph.NameIndexes() {
				if err := store.ApplyIndex(ctx, spec); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return nil, err
	}

	if err := m.Register(RevisionCropFulltext, RevisionNameIndexes,
		func(ctx context.Context, store graph.Store) error {
			return store.ApplyFulltextIndex(ctx, graph.CropFulltext())
		}); err != nil {
		return nil, err
	}

	if err := m.Register(RevisionBackfillCropSlugs, RevisionCropFulltext,
		func(ctx context.Context, store graph.Store) error {
			touched, err := store.BackfillCropSlugs(ctx)
			if err != nil {
				return err
			}
			slog.Info("backfilled crop slugs", slog.Int64("crops", touched))
			return nil
		}); err != nil {
		return nil, err
	}

	return m, nil
}
