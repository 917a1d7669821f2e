package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	agerrors "github.com/agrigpt/agrigraph/internal/errors"
)

// Neo4jConfig carries the connection parameters for a Neo4j-backed store.
// Credentials come from the environment (.env), never from YAML.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// Neo4jStore implements Store against a Neo4j server.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ Store = (*Neo4jStore)(nil)

// OpenNeo4j connects to the configured server and verifies connectivity
// before returning. The caller must Close the store when done.
func OpenNeo4j(ctx context.Context, cfg Neo4jConfig) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, agerrors.New(agerrors.ErrCodeStoreUnavailable,
			fmt.Sprintf("invalid graph store URI %s", cfg.URI), err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, agerrors.New(agerrors.ErrCodeStoreUnavailable,
			fmt.Sprintf("cannot reach graph store at %s", cfg.URI), err).
			WithSuggestion("check NEO4J_URI and that the server is running")
	}

	return &Neo4jStore{driver: driver, database: cfg.Database}, nil
}

// Close releases the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

// run executes a single auto-commit statement and discards the result rows.
func (s *Neo4jStore) run(ctx context.Context, cypher string, params map[string]any) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// ApplyConstraint issues the conditional uniqueness declaration. Neo4j
// reports a constraint violated by existing duplicate data as a statement
// error, which is returned unrecovered.
func (s *Neo4jStore) ApplyConstraint(ctx context.Context, spec ConstraintSpec) error {
	slog.Debug("applying constraint",
		slog.String("name", spec.Name),
		slog.String("label", spec.Label),
		slog.String("property", spec.Property))
	return s.run(ctx, constraintCypher(spec), nil)
}

func (s *Neo4jStore) ApplyIndex(ctx context.Context, spec IndexSpec) error {
	slog.Debug("applying index",
		slog.String("name", spec.Name),
		slog.String("label", spec.Label),
		slog.String("property", spec.Property))
	return s.run(ctx, indexCypher(spec), nil)
}

func (s *Neo4jStore) ApplyFulltextIndex(ctx context.Context, spec FulltextSpec) error {
	slog.Debug("applying fulltext index", slog.String("name", spec.Name))
	return s.run(ctx, fulltextCypher(spec), nil)
}

func (s *Neo4jStore) BackfillCropSlugs(ctx context.Context) (int64, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, backfillSlugCypher, nil)
	if err != nil {
		return 0, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, err
	}
	touched, _ := record.Get("touched")
	n, _ := touched.(int64)
	return n, nil
}

// SchemaVersion reads the revision recorded on the singleton migration node.
func (s *Neo4jStore) SchemaVersion(ctx context.Context) (string, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (m:SchemaMigration {id: 'singleton'}) RETURN m.version AS version`, nil)
	if err != nil {
		return "", err
	}
	if result.Next(ctx) {
		if v, ok := result.Record().Get("version"); ok {
			if version, ok := v.(string); ok {
				return version, nil
			}
		}
	}
	return "", result.Err()
}

func (s *Neo4jStore) WriteSchemaVersion(ctx context.Context, version, replaced string) error {
	return s.run(ctx, `
		MERGE (m:SchemaMigration {id: 'singleton'})
		SET m.version = $version, m.replaced = $replaced, m.updated_at = datetime()`,
		map[string]any{"version": version, "replaced": replaced})
}

func (s *Neo4jStore) UpsertCrop(ctx context.Context, c Crop) error {
	return s.run(ctx, `
		MERGE (c:Crop {id: $id})
		SET c.name_bn = $name_bn,
		    c.name_en = $name_en,
		    c.type    = $type,
		    c.slug    = $slug`,
		map[string]any{
			"id":      c.ID,
			"name_bn": nullable(c.NameBN),
			"name_en": nullable(c.NameEN),
			"type":    nullable(c.Type),
			"slug":    nullable(c.Slug),
		})
}

func (s *Neo4jStore) UpsertVariety(ctx context.Context, v Variety) error {
	return s.run(ctx, `
		MERGE (v:Variety {id: $id})
		SET v.name_bn = $name_bn,
		    v.name_en = $name_en,
		    v.crop_id = $crop_id`,
		map[string]any{
			"id":      v.ID,
			"name_bn": nullable(v.NameBN),
			"name_en": nullable(v.NameEN),
			"crop_id": nullable(v.CropID),
		})
}

func (s *Neo4jStore) UpsertDisease(ctx context.Context, d Disease) error {
	return s.run(ctx, `
		MERGE (d:Disease {id: $id})
		SET d.name_bn = $name_bn,
		    d.name_en = $name_en,
		    d.notes   = $notes`,
		map[string]any{
			"id":      d.ID,
			"name_bn": nullable(d.NameBN),
			"name_en": nullable(d.NameEN),
			"notes":   nullable(d.Notes),
		})
}

func (s *Neo4jStore) UpsertFertilizer(ctx context.Context, f Fertilizer) error {
	return s.run(ctx, `
		MERGE (f:Fertilizer {id: $id})
		SET f.name_bn = $name_bn,
		    f.name_en = $name_en,
		    f.npk     = $npk`,
		map[string]any{
			"id":      f.ID,
			"name_bn": nullable(f.NameBN),
			"name_en": nullable(f.NameEN),
			"npk":     nullable(f.NPK),
		})
}

func (s *Neo4jStore) UpsertPractice(ctx context.Context, p Practice) error {
	return s.run(ctx, `
		MERGE (p:Practice {id: $id})
		SET p.name_bn = $name_bn,
		    p.name_en = $name_en`,
		map[string]any{
			"id":      p.ID,
			"name_bn": nullable(p.NameBN),
			"name_en": nullable(p.NameEN),
		})
}

func (s *Neo4jStore) UpsertAlias(ctx context.Context, a Alias) error {
	return s.run(ctx, `
		MERGE (a:Alias {name: $name})
		WITH a
		MATCH (c:Crop {id: $crop_id})
		MERGE (a)-[:ALIAS_OF]->(c)`,
		map[string]any{"name": a.Name, "crop_id": a.CropID})
}

func (s *Neo4jStore) LinkVariety(ctx context.Context, cropID, varietyID string) error {
	return s.run(ctx, `
		MATCH (c:Crop {id: $crop_id}), (v:Variety {id: $variety_id})
		MERGE (c)-[:HAS_VARIETY]->(v)`,
		map[string]any{"crop_id": cropID, "variety_id": varietyID})
}

func (s *Neo4jStore) LinkDisease(ctx context.Context, varietyID, diseaseID, notes string) error {
	return s.run(ctx, `
		MATCH (v:Variety {id: $variety_id}), (d:Disease {id: $disease_id})
		MERGE (v)-[r:SUFFERS_FROM]->(d)
		SET r.notes = $notes`,
		map[string]any{"variety_id": varietyID, "disease_id": diseaseID, "notes": nullable(notes)})
}

func (s *Neo4jStore) LinkFertilizer(ctx context.Context, cropID, fertilizerID, stage, dose string) error {
	return s.run(ctx, `
		MATCH (c:Crop {id: $crop_id}), (f:Fertilizer {id: $fert_id})
		MERGE (c)-[r:FERTILIZED_WITH]->(f)
		SET r.stage = $stage, r.dose = $dose`,
		map[string]any{
			"crop_id": cropID,
			"fert_id": fertilizerID,
			"stage":   nullable(stage),
			"dose":    nullable(dose),
		})
}

func (s *Neo4jStore) LinkPractice(ctx context.Context, cropID, practiceID string) error {
	return s.run(ctx, `
		MATCH (c:Crop {id: $crop_id}), (p:Practice {id: $practice_id})
		MERGE (c)-[:FOLLOWS]->(p)`,
		map[string]any{"crop_id": cropID, "practice_id": practiceID})
}

const cropReturn = `RETURN c.id AS id, c.name_bn AS name_bn, c.name_en AS name_en,
       c.type AS type, c.slug AS slug`

func (s *Neo4jStore) FindCropExact(ctx context.Context, q string) (Crop, error) {
	return s.queryCrop(ctx, `
		MATCH (c:Crop)
		WHERE toLower(coalesce(c.id, ''))      = toLower($q)
		   OR toLower(coalesce(c.name_bn, '')) = toLower($q)
		   OR toLower(coalesce(c.name_en, '')) = toLower($q)
		   OR toLower(coalesce(c.slug, ''))    = toLower($q)
		`+cropReturn+`
		LIMIT 1`, q)
}

func (s *Neo4jStore) FindCropByAlias(ctx context.Context, q string) (Crop, error) {
	return s.queryCrop(ctx, `
		MATCH (a:Alias) WHERE toLower(coalesce(a.name, '')) = toLower($q)
		MATCH (a)-[:ALIAS_OF]->(c:Crop)
		`+cropReturn+`
		LIMIT 1`, q)
}

func (s *Neo4jStore) FindCropFulltext(ctx context.Context, q string) (Crop, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		CALL db.index.fulltext.queryNodes('cropFulltext', $q) YIELD node, score
		RETURN node.id AS id, node.name_bn AS name_bn, node.name_en AS name_en,
		       node.type AS type, node.slug AS slug
		ORDER BY score DESC
		LIMIT 1`,
		map[string]any{"q": q})
	if err != nil {
		return Crop{}, err
	}
	return cropFromResult(ctx, result)
}

func (s *Neo4jStore) FindCropContains(ctx context.Context, q string) (Crop, error) {
	return s.queryCrop(ctx, `
		MATCH (c:Crop)
		WHERE toLower(coalesce(c.name_bn, '')) CONTAINS toLower($q)
		   OR toLower(coalesce(c.name_en, '')) CONTAINS toLower($q)
		   OR toLower(coalesce(c.slug, ''))    CONTAINS toLower($q)
		`+cropReturn+`
		LIMIT 1`, q)
}

func (s *Neo4jStore) Crops(ctx context.Context) ([]Crop, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `MATCH (c:Crop) `+cropReturn, nil)
	if err != nil {
		return nil, err
	}

	var crops []Crop
	for result.Next(ctx) {
		crops = append(crops, cropFromRecordValues(result.Record().AsMap()))
	}
	return crops, result.Err()
}

func (s *Neo4jStore) queryCrop(ctx context.Context, cypher, q string) (Crop, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, map[string]any{"q": q})
	if err != nil {
		return Crop{}, err
	}
	return cropFromResult(ctx, result)
}

func cropFromResult(ctx context.Context, result neo4j.ResultWithContext) (Crop, error) {
	if result.Next(ctx) {
		return cropFromRecordValues(result.Record().AsMap()), nil
	}
	if err := result.Err(); err != nil {
		return Crop{}, err
	}
	return Crop{}, ErrNotFound
}

func cropFromRecordValues(values map[string]any) Crop {
	return Crop{
		ID:     stringValue(values["id"]),
		NameBN: stringValue(values["name_bn"]),
		NameEN: stringValue(values["name_en"]),
		Type:   stringValue(values["type"]),
		Slug:   stringValue(values["slug"]),
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// nullable maps "" to nil so empty fields become absent properties instead of
// empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
