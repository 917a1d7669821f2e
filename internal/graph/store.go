// Package graph defines the knowledge-graph data model and the narrow store
// interface the rest of the toolkit is written against.
//
// The store is always an injected dependency: schema application, seeding and
// resolution never reach for a global connection. Two implementations exist,
// a Neo4j-backed store for real deployments and an in-memory store for tests
// and dry-run inspection.
package graph

import "context"

// ErrNotFound is returned by lookups that match no node.
var ErrNotFound = notFoundError("graph: not found")

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

// SchemaStore applies declarative schema statements. All Apply methods are
// idempotent: re-applying an existing constraint or index is a no-op, never
// an error. ApplyConstraint fails with a store-level error when existing data
// already violates the declared uniqueness; that error is surfaced to the
// operator, not recovered.
type SchemaStore interface {
	ApplyConstraint(ctx context.Context, spec ConstraintSpec) error
	ApplyIndex(ctx context.Context, spec IndexSpec) error
	ApplyFulltextIndex(ctx context.Context, spec FulltextSpec) error

	// BackfillCropSlugs sets slug on every Crop node from name_en (name_bn
	// fallback). Re-running recomputes the same value; crops with neither
	// name keep their slug unset. Returns the number of crops touched.
	BackfillCropSlugs(ctx context.Context) (int64, error)

	// SchemaVersion returns the recorded migration revision, or "" on a
	// brand-new store.
	SchemaVersion(ctx context.Context) (string, error)
	WriteSchemaVersion(ctx context.Context, version, replaced string) error
}

// NodeStore upserts nodes and relationships with MERGE semantics keyed on id.
type NodeStore interface {
	UpsertCrop(ctx context.Context, c Crop) error
	UpsertVariety(ctx context.Context, v Variety) error
	UpsertDisease(ctx context.Context, d Disease) error
	UpsertFertilizer(ctx context.Context, f Fertilizer) error
	UpsertPractice(ctx context.Context, p Practice) error
	UpsertAlias(ctx context.Context, a Alias) error

	LinkVariety(ctx context.Context, cropID, varietyID string) error
	LinkDisease(ctx context.Context, varietyID, diseaseID, notes string) error
	LinkFertilizer(ctx context.Context, cropID, fertilizerID, stage, dose string) error
	LinkPractice(ctx context.Context, cropID, practiceID string) error
}

// CropFinder answers crop-resolution queries. Each method returns ErrNotFound
// when nothing matches.
type CropFinder interface {
	// FindCropExact matches id, name_bn, name_en or slug case-insensitively.
	FindCropExact(ctx context.Context, q string) (Crop, error)
	// FindCropByAlias follows an Alias node to its crop.
	FindCropByAlias(ctx context.Context, q string) (Crop, error)
	// FindCropFulltext queries the cropFulltext index and returns the best hit.
	FindCropFulltext(ctx context.Context, q string) (Crop, error)
	// FindCropContains falls back to substring containment over names and slug.
	FindCropContains(ctx context.Context, q string) (Crop, error)
	// Crops lists all crop nodes.
	Crops(ctx context.Context) ([]Crop, error)
}

// Store is the full surface a graph backend provides.
type Store interface {
	SchemaStore
	NodeStore
	CropFinder

	Close(ctx context.Context) error
}
