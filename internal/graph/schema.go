package graph

import "strings"

// Labels of the knowledge graph. Every node of each label carries a unique id.
const (
	LabelCrop       = "Crop"
	LabelVariety    = "Variety"
	LabelDisease    = "Disease"
	LabelFertilizer = "Fertilizer"
	LabelPractice   = "Practice"
	LabelAlias      = "Alias"
)

// Relationship types.
const (
	RelHasVariety      = "HAS_VARIETY"
	RelSuffersFrom     = "SUFFERS_FROM"
	RelFertilizedWith  = "FERTILIZED_WITH"
	RelFollowsPractice = "FOLLOWS"
	RelAliasOf         = "ALIAS_OF"
)

// IdentityConstraints returns the uniqueness constraints the store must
// enforce. Constraint names are part of the store contract and must not
// change between releases.
func IdentityConstraints() []ConstraintSpec {
	return []ConstraintSpec{
		{Name: "crop_id", Label: LabelCrop, Property: "id"},
		{Name: "variety_id", Label: LabelVariety, Property: "id"},
		{Name: "disease_id", Label: LabelDisease, Property: "id"},
		{Name: "fertilizer_id", Label: LabelFertilizer, Property: "id"},
		{Name: "practice_id", Label: LabelPractice, Property: "id"},
	}
}

// NameIndexes returns the lookup indexes on English names. They accelerate
// lookup only and enforce nothing.
func NameIndexes() []IndexSpec {
	return []IndexSpec{
		{Name: "crop_name_en", Label: LabelCrop, Property: "name_en"},
		{Name: "variety_name_en", Label: LabelVariety, Property: "name_en"},
	}
}

// CropFulltext returns the full-text index used by crop resolution.
func CropFulltext() FulltextSpec {
	return FulltextSpec{
		Name:       "cropFulltext",
		Label:      LabelCrop,
		Properties: []string{"name_bn", "name_en", "slug"},
	}
}

// SlugFrom derives a crop slug: the English name lower-cased with spaces
// replaced by hyphens, falling back to the Bengali name under the same
// transform. Returns "" when both names are empty (the slug stays unset).
func SlugFrom(nameEN, nameBN string) string {
	name := nameEN
	if name == "" {
		name = nameBN
	}
	if name == "" {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}
