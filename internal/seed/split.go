// Package seed turns the master agricultural reference sheet into graph
// nodes and relationships. Split breaks the wide master CSV into per-label
// node files plus relationship files; Load merges those files into the
// store; aliases adds Bengali lookup names for loaded crops.
package seed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"

	agerrors "github.com/agrigpt/agrigraph/internal/errors"
)

// Logical field -> master sheet column. Columns missing from the sheet fall
// back to empty values, so partial sheets still split cleanly.
var colmap = map[string]string{
	"crop_name_bn":     "Crop_BN",
	"crop_name_en":     "Crop_EN",
	"crop_type":        "Crop_Type",
	"variety_name_bn":  "Variety_BN",
	"variety_name_en":  "Variety_EN",
	"disease_name_bn":  "Disease_BN",
	"disease_name_en":  "Disease_EN",
	"disease_notes":    "Disease_Notes",
	"fert_name_bn":     "Fert_BN",
	"fert_name_en":     "Fert_EN",
	"npk_ratio":        "NPK",
	"fert_stage":       "Fert_Stage",
	"fert_dose":        "Fert_Dose",
	"practice_name_bn": "Practice_BN",
	"practice_name_en": "Practice_EN",
}

// Output file names under the CSV directory. Load reads the same set.
const (
	FileCrops       = "nodes_crops.csv"
	FileVarieties   = "nodes_varieties.csv"
	FileDiseases    = "nodes_diseases.csv"
	FileFertilizers = "nodes_fertilizers.csv"
	FilePractices   = "nodes_practices.csv"

	FileRelCropVariety    = "rels_crop_variety.csv"
	FileRelVarietyDisease = "rels_variety_disease.csv"
	FileRelCropFertilizer = "rels_crop_fertilizer.csv"
	FileRelCropPractice   = "rels_crop_practice.csv"
)

// Summary counts what a split or load produced, keyed for the run ledger.
type Summary struct {
	Crops       int `json:"crops"`
	Varieties   int `json:"varieties"`
	Diseases    int `json:"diseases"`
	Fertilizers int `json:"fertilizers"`
	Practices   int `json:"practices"`

	CropVariety    int `json:"rel_crop_variety"`
	VarietyDisease int `json:"rel_variety_disease"`
	CropFertilizer int `json:"rel_crop_fertilizer"`
	CropPractice   int `json:"rel_crop_practice"`
}

func (s Summary) String() string {
	return fmt.Sprintf("crops=%d varieties=%d diseases=%d fertilizers=%d practices=%d rels=%d",
		s.Crops, s.Varieties, s.Diseases, s.Fertilizers, s.Practices,
		s.CropVariety+s.VarietyDisease+s.CropFertilizer+s.CropPractice)
}

var spaceRun = regexp.MustCompile(`\s+`)

// normText NFC-normalizes a cell, trims it, and collapses whitespace runs.
// Bengali text arrives in mixed normalization forms across source sheets.
func normText(s string) string {
	return spaceRun.ReplaceAllString(strings.TrimSpace(norm.NFC.String(s)), " ")
}

// nodeID builds a stable id like "crop:boro-rice" from the non-empty parts.
func nodeID(prefix string, parts ...string) string {
	var slugs []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if s := slug.Make(p); s != "" {
			slugs = append(slugs, s)
		}
	}
	if len(slugs) == 0 {
		return prefix + ":unknown"
	}
	return prefix + ":" + strings.Join(slugs, "-")
}

type table struct {
	header  []string
	keyCols int
	rows    [][]string
	seen    map[string]bool
}

// newTable keeps rows unique on the first keyCols columns. Node tables key on
// id; relationship tables key on every column.
func newTable(keyCols int, header ...string) *table {
	return &table{header: header, keyCols: keyCols, seen: make(map[string]bool)}
}

func (t *table) add(row ...string) {
	key := strings.Join(row[:t.keyCols], "\x1f")
	if t.seen[key] {
		return
	}
	t.seen[key] = true
	t.rows = append(t.rows, row)
}

func (t *table) write(dir, name string) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return agerrors.New(agerrors.ErrCodeFileNotFound, "create "+name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.header); err != nil {
		return err
	}
	if err := w.WriteAll(t.rows); err != nil {
		return err
	}
	return f.Close()
}

// Split reads the master CSV and writes per-label node and relationship CSVs
// into csvDir. Rows without any crop name are skipped; all outputs are
// deduplicated so re-splitting the same sheet is stable.
func Split(masterPath, csvDir string) (Summary, error) {
	f, err := os.Open(masterPath)
	if err != nil {
		return Summary{}, agerrors.New(agerrors.ErrCodeFileNotFound,
			"master CSV not found: "+masterPath, err).
			WithSuggestion("pass --master or set paths.master_csv in .agrigraph.yaml")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Summary{}, agerrors.New(agerrors.ErrCodeFileCorrupt, "parse master CSV", err)
	}
	if len(records) == 0 {
		return Summary{}, agerrors.New(agerrors.ErrCodeFileCorrupt, "master CSV has no header row", nil)
	}

	// column name -> position, with header whitespace trimmed
	pos := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		pos[strings.TrimSpace(col)] = i
	}
	get := func(row []string, logical string) string {
		col, ok := colmap[logical]
		if !ok {
			return ""
		}
		i, ok := pos[col]
		if !ok || i >= len(row) {
			return ""
		}
		return normText(row[i])
	}

	crops := newTable(1, "id", "name_bn", "name_en", "type")
	vars := newTable(1, "id", "name_bn", "name_en", "crop_id")
	dis := newTable(1, "id", "name_bn", "name_en", "notes")
	ferts := newTable(1, "id", "name_bn", "name_en", "npk")
	pracs := newTable(1, "id", "name_bn", "name_en")

	relCV := newTable(2, "crop_id", "variety_id")
	relVD := newTable(3, "variety_id", "disease_id", "notes")
	relCF := newTable(4, "crop_id", "fert_id", "stage", "dose")
	relCP := newTable(2, "crop_id", "practice_id")

	for _, row := range records[1:] {
		cropBN := get(row, "crop_name_bn")
		cropEN := get(row, "crop_name_en")
		if cropBN == "" && cropEN == "" {
			continue
		}
		if cropBN == "" {
			cropBN = cropEN
		}
		cropID := nodeID("crop", cropBN)
		crops.add(cropID, cropBN, cropEN, get(row, "crop_type"))

		varID := ""
		if varBN, varEN := get(row, "variety_name_bn"), get(row, "variety_name_en"); varBN != "" || varEN != "" {
			if varBN == "" {
				varBN = varEN
			}
			varID = nodeID("var", cropBN, varBN)
			vars.add(varID, varBN, varEN, cropID)
			relCV.add(cropID, varID)
		}

		if disBN, disEN := get(row, "disease_name_bn"), get(row, "disease_name_en"); disBN != "" || disEN != "" {
			if disBN == "" {
				disBN = disEN
			}
			notes := get(row, "disease_notes")
			disID := nodeID("dis", disBN)
			dis.add(disID, disBN, disEN, notes)
			if varID != "" {
				relVD.add(varID, disID, notes)
			}
		}

		if fertBN, fertEN := get(row, "fert_name_bn"), get(row, "fert_name_en"); fertBN != "" || fertEN != "" {
			if fertBN == "" {
				fertBN = fertEN
			}
			fertID := nodeID("fert", fertBN)
			ferts.add(fertID, fertBN, fertEN, get(row, "npk_ratio"))
			relCF.add(cropID, fertID, get(row, "fert_stage"), get(row, "fert_dose"))
		}

		if pracBN, pracEN := get(row, "practice_name_bn"), get(row, "practice_name_en"); pracBN != "" || pracEN != "" {
			if pracBN == "" {
				pracBN = pracEN
			}
			pracID := nodeID("prac", pracBN)
			pracs.add(pracID, pracBN, pracEN)
			relCP.add(cropID, pracID)
		}
	}

	if err := os.MkdirAll(csvDir, 0o755); err != nil {
		return Summary{}, agerrors.New(agerrors.ErrCodeFileNotFound, "create csv dir", err)
	}
	outputs := map[string]*table{
		FileCrops:             crops,
		FileVarieties:         vars,
		FileDiseases:          dis,
		FileFertilizers:       ferts,
		FilePractices:         pracs,
		FileRelCropVariety:    relCV,
		FileRelVarietyDisease: relVD,
		FileRelCropFertilizer: relCF,
		FileRelCropPractice:   relCP,
	}
	for name, t := range outputs {
		if err := t.write(csvDir, name); err != nil {
			return Summary{}, err
		}
	}

	return Summary{
		Crops:       len(crops.rows),
		Varieties:   len(vars.rows),
		Diseases:    len(dis.rows),
		Fertilizers: len(ferts.rows),
		Practices:   len(pracs.rows),

		CropVariety:    len(relCV.rows),
		VarietyDisease: len(relVD.rows),
		CropFertilizer: len(relCF.rows),
		CropPractice:   len(relCP.rows),
	}, nil
}
