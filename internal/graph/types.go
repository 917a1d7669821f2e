package graph

// Crop is a cultivated crop node. Names are bilingual; the slug is derived
// from the English name (Bengali fallback) and is not unique.
type Crop struct {
	ID     string `json:"id"`
	NameBN string `json:"name_bn,omitempty"`
	NameEN string `json:"name_en,omitempty"`
	Type   string `json:"type,omitempty"`
	Slug   string `json:"slug,omitempty"`
}

// Variety is a cultivar of a crop.
type Variety struct {
	ID     string `json:"id"`
	NameBN string `json:"name_bn,omitempty"`
	NameEN string `json:"name_en,omitempty"`
	CropID string `json:"crop_id,omitempty"`
}

// Disease affects varieties (or crops directly when no variety is known).
type Disease struct {
	ID     string `json:"id"`
	NameBN string `json:"name_bn,omitempty"`
	NameEN string `json:"name_en,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Fertilizer is applied to crops; application stage and dose live on the
// relationship, not the node.
type Fertilizer struct {
	ID     string `json:"id"`
	NameBN string `json:"name_bn,omitempty"`
	NameEN string `json:"name_en,omitempty"`
	NPK    string `json:"npk,omitempty"`
}

// Practice is a cultivation practice followed for a crop.
type Practice struct {
	ID     string `json:"id"`
	NameBN string `json:"name_bn,omitempty"`
	NameEN string `json:"name_en,omitempty"`
}

// Alias maps a colloquial (usually Bengali) name onto a crop.
type Alias struct {
	Name   string `json:"name"`
	CropID string `json:"crop_id"`
}

// ConstraintSpec declares a uniqueness constraint on one property of a label.
type ConstraintSpec struct {
	Name     string
	Label    string
	Property string
}

// IndexSpec declares a non-unique lookup index on one property of a label.
type IndexSpec struct {
	Name     string
	Label    string
	Property string
}

// FulltextSpec declares a full-text index over several properties of a label.
type FulltextSpec struct {
	Name       string
	Label      string
	Properties []string
}
