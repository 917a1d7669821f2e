package seed

import (
	"context"
	"sort"
	"strings"

	"github.com/agrigpt/agrigraph/internal/graph"
)

// aliasRules maps a Bengali alias to keyword groups. A crop earns an alias
// when any group has all of its keywords in the crop's id or names.
var aliasRules = map[string][][]string{
	// rice season groups; the plain "ধান" umbrella is added separately
	"আমন":  {{"aman"}},
	"বোরো": {{"boro"}},
	"আউশ":  {{"aus"}},

	// staples, pulses, oilseeds, cash crops
	"গম":         {{"wheat"}},
	"ভুট্টা":     {{"maize"}, {"corn"}},
	"পাট":        {{"jute"}},
	"আলু":        {{"potato"}},
	"সরিষা":      {{"mustard"}},
	"তিল":        {{"sesame"}},
	"চিনাবাদাম":  {{"groundnut"}, {"peanut"}},
	"সয়াবিন":    {{"soybean"}, {"soya"}},
	"মসুর":       {{"lentil"}, {"masur"}},
	"মুগ":        {{"mung"}, {"moog"}},
	"ছোলা":       {{"chickpea"}},
	"খেসারি":     {{"grass-pea"}, {"khesari"}},
	"মটর":        {{"pea"}},

	// high-frequency vegetables
	"পেঁয়াজ":    {{"onion"}},
	"রসুন":       {{"garlic"}},
	"মরিচ":       {{"chili"}, {"chilli"}, {"capsicum"}},
	"টমেটো":      {{"tomato"}},
	"বেগুন":      {{"eggplant"}, {"brinjal"}},
	"ঢেঁড়স":     {{"okra"}, {"lady's finger"}},
	"শসা":        {{"cucumber"}},
	"কুমড়া":     {{"pumpkin"}},
	"লাউ":        {{"bottle gourd"}},
	"করলা":       {{"bitter gourd"}},
	"ঝিঙে":       {{"ridge gourd"}},
	"চিচিঙ্গা":   {{"snake gourd"}},
}

// riceTokens mark a crop as rice; such crops also get the umbrella "ধান".
var riceTokens = []string{"aman", "boro", "aus", "rice", "paddy"}

func cropText(c graph.Crop) string {
	return strings.ToLower(strings.Join([]string{c.NameBN, c.NameEN, c.ID}, " "))
}

func matches(text string, groups [][]string) bool {
	for _, group := range groups {
		all := true
		for _, kw := range group {
			if !strings.Contains(text, kw) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// BuildAliases derives Bengali alias links for the given crops, sorted and
// deduplicated.
func BuildAliases(crops []graph.Crop) []graph.Alias {
	seen := make(map[graph.Alias]bool)
	var out []graph.Alias

	add := func(name, cropID string) {
		a := graph.Alias{Name: name, CropID: cropID}
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}

	for _, c := range crops {
		if c.ID == "" {
			continue
		}
		text := cropText(c)

		for _, tok := range riceTokens {
			if strings.Contains(text, tok) {
				add("ধান", c.ID)
				break
			}
		}
		for alias, groups := range aliasRules {
			if matches(text, groups) {
				add(alias, c.ID)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CropID < out[j].CropID
	})
	return out
}

// SeedAliases loads every crop from the store, derives its aliases, and
// writes them back as Alias nodes. Returns how many alias links were written.
func SeedAliases(ctx context.Context, store interface {
	graph.NodeStore
	graph.CropFinder
}) (int, error) {
	crops, err := store.Crops(ctx)
	if err != nil {
		return 0, err
	}
	aliases := BuildAliases(crops)
	for _, a := range aliases {
		if err := store.UpsertAlias(ctx, a); err != nil {
			return 0, err
		}
	}
	return len(aliases), nil
}
