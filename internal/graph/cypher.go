package graph

import (
	"fmt"
	"strings"
)

// Cypher builders for the schema definition set. Every declaration is
// qualified IF NOT EXISTS so the full set can be re-applied safely.

func constraintCypher(spec ConstraintSpec) string {
	return fmt.Sprintf(
		"CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
		spec.Name, spec.Label, spec.Property)
}

func indexCypher(spec IndexSpec) string {
	return fmt.Sprintf(
		"CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (n.%s)",
		spec.Name, spec.Label, spec.Property)
}

func fulltextCypher(spec FulltextSpec) string {
	props := make([]string, len(spec.Properties))
	for i, p := range spec.Properties {
		props[i] = "n." + p
	}
	return fmt.Sprintf(
		"CREATE FULLTEXT INDEX %s IF NOT EXISTS FOR (n:%s) ON EACH [%s]",
		spec.Name, spec.Label, strings.Join(props, ", "))
}

// backfillSlugCypher recomputes every crop slug in place. coalesce propagates
// null when both names are absent, which clears rather than sets the slug.
const backfillSlugCypher = `
MATCH (c:Crop)
SET c.slug = toLower(replace(coalesce(c.name_en, c.name_bn), ' ', '-'))
RETURN count(c) AS touched`
