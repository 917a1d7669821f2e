package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	agerrors "github.com/agrigpt/agrigraph/internal/errors"
)

// MemoryStore is an in-process Store used by tests and dry-run inspection.
// It enforces the same semantics the real store would: conditional schema
// declarations are idempotent, active uniqueness constraints reject duplicate
// creates, and constraint creation over already-duplicated data fails.
type MemoryStore struct {
	mu sync.RWMutex

	nodes       map[string][]*memNode
	rels        []memRel
	constraints map[string]ConstraintSpec
	indexes     map[string]IndexSpec
	fulltexts   map[string]FulltextSpec

	version  string
	replaced string
}

type memNode struct {
	props map[string]string
}

type memRel struct {
	relType string
	fromID  string
	toID    string
	props   map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:       make(map[string][]*memNode),
		constraints: make(map[string]ConstraintSpec),
		indexes:     make(map[string]IndexSpec),
		fulltexts:   make(map[string]FulltextSpec),
	}
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// CreateNode creates a node without MERGE semantics, the way raw ingestion
// would. It fails when an active uniqueness constraint is violated.
func (s *MemoryStore) CreateNode(label string, props map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.constraints {
		if c.Label != label {
			continue
		}
		v := props[c.Property]
		if v == "" {
			continue
		}
		for _, n := range s.nodes[label] {
			if n.props[c.Property] == v {
				return agerrors.New(agerrors.ErrCodeConstraintViolated,
					fmt.Sprintf("%s violated: %s %s=%q already exists", c.Name, label, c.Property, v), nil)
			}
		}
	}

	s.nodes[label] = append(s.nodes[label], &memNode{props: cloneProps(props)})
	return nil
}

func (s *MemoryStore) ApplyConstraint(_ context.Context, spec ConstraintSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.constraints[spec.Name]; ok {
		return nil
	}

	// Existing duplicate data makes constraint creation fail, mirroring the
	// store-level error a real backend raises.
	seen := make(map[string]bool)
	for _, n := range s.nodes[spec.Label] {
		v := n.props[spec.Property]
		if v == "" {
			continue
		}
		if seen[v] {
			return agerrors.New(agerrors.ErrCodeConstraintViolated,
				fmt.Sprintf("cannot create %s: duplicate %s %s=%q", spec.Name, spec.Label, spec.Property, v), nil)
		}
		seen[v] = true
	}

	s.constraints[spec.Name] = spec
	return nil
}

func (s *MemoryStore) ApplyIndex(_ context.Context, spec IndexSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[spec.Name]; !ok {
		s.indexes[spec.Name] = spec
	}
	return nil
}

func (s *MemoryStore) ApplyFulltextIndex(_ context.Context, spec FulltextSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fulltexts[spec.Name]; !ok {
		s.fulltexts[spec.Name] = spec
	}
	return nil
}

func (s *MemoryStore) BackfillCropSlugs(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var touched int64
	for _, n := range s.nodes[LabelCrop] {
		slug := SlugFrom(n.props["name_en"], n.props["name_bn"])
		if slug == "" {
			delete(n.props, "slug")
		} else {
			n.props["slug"] = slug
		}
		touched++
	}
	return touched, nil
}

func (s *MemoryStore) SchemaVersion(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, nil
}

func (s *MemoryStore) WriteSchemaVersion(_ context.Context, version, replaced string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = version
	s.replaced = replaced
	return nil
}

// ConstraintNames reports the applied constraints, sorted, for inspection.
func (s *MemoryStore) ConstraintNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.constraints))
	for name := range s.constraints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IndexNames reports the applied lookup indexes, sorted.
func (s *MemoryStore) IndexNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasFulltextIndex reports whether the named full-text index is applied.
func (s *MemoryStore) HasFulltextIndex(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fulltexts[name]
	return ok
}

// IndexedLookup reports whether a lookup on label.property is servable by a
// declared index.
func (s *MemoryStore) IndexedLookup(label, property string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, idx := range s.indexes {
		if idx.Label == label && idx.Property == property {
			return true
		}
	}
	return false
}

func (s *MemoryStore) UpsertCrop(_ context.Context, c Crop) error {
	return s.merge(LabelCrop, c.ID, map[string]string{
		"name_bn": c.NameBN, "name_en": c.NameEN, "type": c.Type, "slug": c.Slug,
	})
}

func (s *MemoryStore) UpsertVariety(_ context.Context, v Variety) error {
	return s.merge(LabelVariety, v.ID, map[string]string{
		"name_bn": v.NameBN, "name_en": v.NameEN, "crop_id": v.CropID,
	})
}

func (s *MemoryStore) UpsertDisease(_ context.Context, d Disease) error {
	return s.merge(LabelDisease, d.ID, map[string]string{
		"name_bn": d.NameBN, "name_en": d.NameEN, "notes": d.Notes,
	})
}

func (s *MemoryStore) UpsertFertilizer(_ context.Context, f Fertilizer) error {
	return s.merge(LabelFertilizer, f.ID, map[string]string{
		"name_bn": f.NameBN, "name_en": f.NameEN, "npk": f.NPK,
	})
}

func (s *MemoryStore) UpsertPractice(_ context.Context, p Practice) error {
	return s.merge(LabelPractice, p.ID, map[string]string{
		"name_bn": p.NameBN, "name_en": p.NameEN,
	})
}

func (s *MemoryStore) UpsertAlias(_ context.Context, a Alias) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByID(LabelCrop, a.CropID) == nil {
		return nil // MATCH on a missing crop no-ops
	}
	for _, n := range s.nodes[LabelAlias] {
		if n.props["name"] == a.Name && n.props["crop_id"] == a.CropID {
			return nil
		}
	}
	s.nodes[LabelAlias] = append(s.nodes[LabelAlias], &memNode{
		props: map[string]string{"name": a.Name, "crop_id": a.CropID},
	})
	return nil
}

func (s *MemoryStore) LinkVariety(_ context.Context, cropID, varietyID string) error {
	return s.link(RelHasVariety, LabelCrop, cropID, LabelVariety, varietyID, nil)
}

func (s *MemoryStore) LinkDisease(_ context.Context, varietyID, diseaseID, notes string) error {
	return s.link(RelSuffersFrom, LabelVariety, varietyID, LabelDisease, diseaseID,
		map[string]string{"notes": notes})
}

func (s *MemoryStore) LinkFertilizer(_ context.Context, cropID, fertilizerID, stage, dose string) error {
	return s.link(RelFertilizedWith, LabelCrop, cropID, LabelFertilizer, fertilizerID,
		map[string]string{"stage": stage, "dose": dose})
}

func (s *MemoryStore) LinkPractice(_ context.Context, cropID, practiceID string) error {
	return s.link(RelFollowsPractice, LabelCrop, cropID, LabelPractice, practiceID, nil)
}

// RelationshipCount reports how many relationships of relType exist.
func (s *MemoryStore) RelationshipCount(relType string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, r := range s.rels {
		if r.relType == relType {
			n++
		}
	}
	return n
}

func (s *MemoryStore) FindCropExact(_ context.Context, q string) (Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.nodes[LabelCrop] {
		if equalsFold(n.props["id"], q) || equalsFold(n.props["name_bn"], q) ||
			equalsFold(n.props["name_en"], q) || equalsFold(n.props["slug"], q) {
			return cropFromProps(n.props), nil
		}
	}
	return Crop{}, ErrNotFound
}

func (s *MemoryStore) FindCropByAlias(_ context.Context, q string) (Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.nodes[LabelAlias] {
		if !equalsFold(a.props["name"], q) {
			continue
		}
		if n := s.findByID(LabelCrop, a.props["crop_id"]); n != nil {
			return cropFromProps(n.props), nil
		}
	}
	return Crop{}, ErrNotFound
}

func (s *MemoryStore) FindCropFulltext(_ context.Context, q string) (Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spec, ok := s.fulltexts[CropFulltext().Name]
	if !ok {
		return Crop{}, fmt.Errorf("graph: no fulltext index %q", CropFulltext().Name)
	}
	for _, n := range s.nodes[LabelCrop] {
		for _, prop := range spec.Properties {
			if containsFold(n.props[prop], q) {
				return cropFromProps(n.props), nil
			}
		}
	}
	return Crop{}, ErrNotFound
}

func (s *MemoryStore) FindCropContains(_ context.Context, q string) (Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.nodes[LabelCrop] {
		if containsFold(n.props["name_bn"], q) || containsFold(n.props["name_en"], q) ||
			containsFold(n.props["slug"], q) {
			return cropFromProps(n.props), nil
		}
	}
	return Crop{}, ErrNotFound
}

func (s *MemoryStore) Crops(context.Context) ([]Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	crops := make([]Crop, 0, len(s.nodes[LabelCrop]))
	for _, n := range s.nodes[LabelCrop] {
		crops = append(crops, cropFromProps(n.props))
	}
	sort.Slice(crops, func(i, j int) bool { return crops[i].ID < crops[j].ID })
	return crops, nil
}

func (s *MemoryStore) merge(label, id string, props map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.findByID(label, id)
	if n == nil {
		n = &memNode{props: map[string]string{"id": id}}
		s.nodes[label] = append(s.nodes[label], n)
	}
	for k, v := range props {
		if v == "" {
			delete(n.props, k)
		} else {
			n.props[k] = v
		}
	}
	return nil
}

func (s *MemoryStore) link(relType, fromLabel, fromID, toLabel, toID string, props map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByID(fromLabel, fromID) == nil || s.findByID(toLabel, toID) == nil {
		return nil // MATCH with no match no-ops
	}
	for i := range s.rels {
		r := &s.rels[i]
		if r.relType == relType && r.fromID == fromID && r.toID == toID {
			for k, v := range props {
				r.props[k] = v
			}
			return nil
		}
	}
	s.rels = append(s.rels, memRel{
		relType: relType, fromID: fromID, toID: toID, props: cloneProps(props),
	})
	return nil
}

func (s *MemoryStore) findByID(label, id string) *memNode {
	for _, n := range s.nodes[label] {
		if n.props["id"] == id {
			return n
		}
	}
	return nil
}

func cropFromProps(props map[string]string) Crop {
	return Crop{
		ID:     props["id"],
		NameBN: props["name_bn"],
		NameEN: props["name_en"],
		Type:   props["type"],
		Slug:   props["slug"],
	}
}

func cloneProps(props map[string]string) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func equalsFold(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

func containsFold(haystack, needle string) bool {
	return haystack != "" && strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
