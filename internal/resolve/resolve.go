// Package resolve answers free-text crop queries in Bengali or English.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/norm"

	agerrors "github.com/agrigpt/agrigraph/internal/errors"
	"github.com/agrigpt/agrigraph/internal/graph"
)

const defaultCacheSize = 256

// Resolver matches a query against crops by increasingly fuzzy tiers:
// exact id/name/slug, then alias, then full-text, then substring
// containment. Hits are cached.
type Resolver struct {
	finder graph.CropFinder
	cache  *lru.Cache[string, graph.Crop]
	log    *slog.Logger
}

// New builds a Resolver over the given finder.
func New(finder graph.CropFinder, log *slog.Logger) (*Resolver, error) {
	cache, err := lru.New[string, graph.Crop](defaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Resolver{finder: finder, cache: cache, log: log}, nil
}

// zero-width characters that copy-pasted Bengali text often carries
const zeroWidth = "​‌‍⁠\uFEFF"

// Normalize NFC-normalizes a query, strips zero-width characters, and trims
// surrounding whitespace.
func Normalize(q string) string {
	q = norm.NFC.String(q)
	q = strings.Map(func(r rune) rune {
		if strings.ContainsRune(zeroWidth, r) {
			return -1
		}
		return r
	}, q)
	return strings.TrimSpace(q)
}

// Crop resolves the query to a single crop. Returns graph.ErrNotFound when
// no tier matches, and ErrCodeEmptyQuery when the query normalizes to "".
func (r *Resolver) Crop(ctx context.Context, query string) (graph.Crop, error) {
	q := Normalize(query)
	if q == "" {
		return graph.Crop{}, agerrors.New(agerrors.ErrCodeEmptyQuery, "empty crop query", nil)
	}

	if c, ok := r.cache.Get(q); ok {
		return c, nil
	}

	tiers := []struct {
		name string
		fn   func(context.Context, string) (graph.Crop, error)
	}{
		{"exact", r.finder.FindCropExact},
		{"alias", r.finder.FindCropByAlias},
		{"fulltext", r.finder.FindCropFulltext},
		{"contains", r.finder.FindCropContains},
	}
	for _, tier := range tiers {
		c, err := tier.fn(ctx, q)
		if err == nil {
			r.cache.Add(q, c)
			return c, nil
		}
		if !errors.Is(err, graph.ErrNotFound) {
			// A broken tier (for example a missing full-text index) should
			// not prevent looser tiers from answering.
			r.log.Debug("resolution tier failed", "tier", tier.name, "error", err)
		}
	}
	return graph.Crop{}, graph.ErrNotFound
}
