package seed

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	agerrors "github.com/agrigpt/agrigraph/internal/errors"
	"github.com/agrigpt/agrigraph/internal/graph"
)

// naLike are cell values treated as absent. Spreadsheet exports leave these
// behind for empty cells.
var naLike = map[string]bool{"": true, "na": true, "n/a": true, "nan": true, "none": true, "null": true, "-": true}

func normalizeCell(s string) string {
	t := normText(s)
	if naLike[strings.ToLower(t)] {
		return ""
	}
	return t
}

// record is a parsed CSV row addressed by header name.
type record map[string]string

func readRecords(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // optional files load as empty
		}
		return nil, agerrors.New(agerrors.ErrCodeFileNotFound, "open "+filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, agerrors.New(agerrors.ErrCodeFileCorrupt, "parse "+filepath.Base(path), err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	out := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[strings.TrimSpace(col)] = normalizeCell(row[i])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Load reads the split CSVs from csvDir and merges them into the store.
// Files are parsed concurrently (bounded by workers); writes run as one
// ordered pass so every relationship endpoint exists before its link.
func Load(ctx context.Context, store graph.NodeStore, csvDir string, workers int, log *slog.Logger) (Summary, error) {
	if workers < 1 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		tables = make(map[string][]record, 9)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range []string{
		FileCrops, FileVarieties, FileDiseases, FileFertilizers, FilePractices,
		FileRelCropVariety, FileRelVarietyDisease, FileRelCropFertilizer, FileRelCropPractice,
	} {
		name := name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := readRecords(filepath.Join(csvDir, name))
			if err != nil {
				return err
			}
			mu.Lock()
			tables[name] = recs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	var sum Summary

	for _, r := range tables[FileCrops] {
		if r["id"] == "" {
			continue
		}
		err := store.UpsertCrop(ctx, graph.Crop{
			ID:     r["id"],
			NameBN: r["name_bn"],
			NameEN: r["name_en"],
			Type:   r["type"],
			Slug:   graph.SlugFrom(r["name_en"], r["name_bn"]),
		})
		if err != nil {
			return sum, err
		}
		sum.Crops++
	}

	for _, r := range tables[FileVarieties] {
		if r["id"] == "" {
			continue
		}
		if err := store.UpsertVariety(ctx, graph.Variety{ID: r["id"], NameBN: r["name_bn"], NameEN: r["name_en"], CropID: r["crop_id"]}); err != nil {
			return sum, err
		}
		sum.Varieties++
	}

	for _, r := range tables[FileDiseases] {
		if r["id"] == "" {
			continue
		}
		if err := store.UpsertDisease(ctx, graph.Disease{ID: r["id"], NameBN: r["name_bn"], NameEN: r["name_en"], Notes: r["notes"]}); err != nil {
			return sum, err
		}
		sum.Diseases++
	}

	for _, r := range tables[FileFertilizers] {
		if r["id"] == "" {
			continue
		}
		if err := store.UpsertFertilizer(ctx, graph.Fertilizer{ID: r["id"], NameBN: r["name_bn"], NameEN: r["name_en"], NPK: r["npk"]}); err != nil {
			return sum, err
		}
		sum.Fertilizers++
	}

	for _, r := range tables[FilePractices] {
		if r["id"] == "" {
			continue
		}
		if err := store.UpsertPractice(ctx, graph.Practice{ID: r["id"], NameBN: r["name_bn"], NameEN: r["name_en"]}); err != nil {
			return sum, err
		}
		sum.Practices++
	}

	for _, r := range tables[FileRelCropVariety] {
		if r["crop_id"] == "" || r["variety_id"] == "" {
			continue
		}
		if err := store.LinkVariety(ctx, r["crop_id"], r["variety_id"]); err != nil {
			return sum, err
		}
		sum.CropVariety++
	}

	for _, r := range tables[FileRelVarietyDisease] {
		if r["variety_id"] == "" || r["disease_id"] == "" {
			continue
		}
		if err := store.LinkDisease(ctx, r["variety_id"], r["disease_id"], r["notes"]); err != nil {
			return sum, err
		}
		sum.VarietyDisease++
	}

	for _, r := range tables[FileRelCropFertilizer] {
		if r["crop_id"] == "" || r["fert_id"] == "" {
			continue
		}
		if err := store.LinkFertilizer(ctx, r["crop_id"], r["fert_id"], r["stage"], r["dose"]); err != nil {
			return sum, err
		}
		sum.CropFertilizer++
	}

	for _, r := range tables[FileRelCropPractice] {
		if r["crop_id"] == "" || r["practice_id"] == "" {
			continue
		}
		if err := store.LinkPractice(ctx, r["crop_id"], r["practice_id"]); err != nil {
			return sum, err
		}
		sum.CropPractice++
	}

	log.Info("seed load complete", "summary", sum.String())
	return sum, nil
}
