package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityConstraints_NamesAreStable(t *testing.T) {
	var names []string
	for _, c := range IdentityConstraints() {
		names = append(names, c.Name)
		assert.Equal(t, "id", c.Property)
	}
	assert.Equal(t, []string{"crop_id", "variety_id", "disease_id", "fertilizer_id", "practice_id"}, names)
}

func TestNameIndexes_NamesAreStable(t *testing.T) {
	idx := NameIndexes()
	assert.Equal(t, "crop_name_en", idx[0].Name)
	assert.Equal(t, "variety_name_en", idx[1].Name)
	for _, i := range idx {
		assert.Equal(t, "name_en", i.Property)
	}
}

func TestCropFulltext(t *testing.T) {
	ft := CropFulltext()
	assert.Equal(t, "cropFulltext", ft.Name)
	assert.Equal(t, LabelCrop, ft.Label)
	assert.Equal(t, []string{"name_bn", "name_en", "slug"}, ft.Properties)
}

func TestSlugFrom(t *testing.T) {
	tests := []struct {
		name   string
		nameEN string
		nameBN string
		want   string
	}{
		{"english name", "Boro Rice", "বোরো ধান", "boro-rice"},
		{"bengali fallback", "", "বোরো ধান", "বোরো-ধান"},
		{"already lower", "wheat", "", "wheat"},
		{"multiple spaces keep hyphens", "Aus Rice HYV", "", "aus-rice-hyv"},
		{"both empty stays unset", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlugFrom(tt.nameEN, tt.nameBN))
		})
	}
}
