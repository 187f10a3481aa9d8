package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/sift-cli/internal/selection"
	"github.com/KaramelBytes/sift-cli/internal/table"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(b, pngMagic) {
		t.Fatalf("%s is not a PNG", path)
	}
}

func TestLoadManifestResolvesAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sift.yaml", `
datasets:
  - name: food_by_pct
    source: data/food_by_pct.csv
    value: pct
    threshold: 5
comparisons:
  - name: prov_by_food
    source: /abs/prov_by_food.csv
    rows: provinces
    columns: foods
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d, ok := m.Dataset("food_by_pct")
	if !ok {
		t.Fatalf("dataset missing")
	}
	if d.Source != filepath.Join(dir, "data", "food_by_pct.csv") {
		t.Fatalf("source not resolved: %q", d.Source)
	}
	if d.Threshold == nil || *d.Threshold != 5 || d.ThresholdIsPercentage != nil {
		t.Fatalf("threshold: %+v", d)
	}
	c, ok := m.Comparison("prov_by_food")
	if !ok || c.Source != "/abs/prov_by_food.csv" {
		t.Fatalf("comparison: %+v", c)
	}
	if m.Path() != path {
		t.Fatalf("path: %q", m.Path())
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	neg := -1.0
	m := &Manifest{
		Datasets: []Descriptor{
			{Name: "a", Source: "a.csv", ValueCol: "v"},
			{Name: "a", Source: "b.csv"},
			{Source: "c.csv", ValueCol: "v", Threshold: &neg},
			{Name: "w", Source: "w.csv", Wide: true, Title: "no placeholder"},
		},
		Comparisons: []ComparisonSpec{{Name: "c", Source: "c.csv", RowKind: "foods", ColumnKind: "food"}},
	}
	err := m.Validate()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, want := range []string{
		`dataset "a": duplicate name`,
		`dataset "a": value column is required`,
		"datasets[2]: name is required",
		"datasets[2]: threshold must be >= 0",
		"wide title must contain {column}",
		"rows and columns are both foods",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in:\n%v", want, err)
		}
	}
}

func TestComparisonFor(t *testing.T) {
	m := &Manifest{Comparisons: []ComparisonSpec{
		{Name: "food_by_adult", RowKind: "foods", ColumnKind: "adulterants"},
		{Name: "prov_by_food", RowKind: "provinces", ColumnKind: "foods"},
	}}
	for kind, want := range map[selection.Kind]string{
		selection.Adulterants: "food_by_adult",
		selection.Foods:       "prov_by_food",
		selection.Provinces:   "prov_by_food",
	} {
		c, ok := m.ComparisonFor(kind)
		if !ok || c.Name != want {
			t.Errorf("ComparisonFor(%s) = %q, %v", kind, c.Name, ok)
		}
	}
}

func TestRunWritesChartsAndRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fruit.csv", "fruit,count\napple,50\nbanana,30\ncherry,15\ndate,5\n")
	writeFile(t, dir, "loc.csv", "loc_type,subtype,pct\nmarket,wet,50\nmarket,super,30\nstore,small,1\n")
	twenty := 20.0
	m := &Manifest{Datasets: []Descriptor{
		{Name: "fruit", Source: filepath.Join(dir, "fruit.csv"), ValueCol: "count", Threshold: &twenty},
		{Name: "loc_by_pct", Source: filepath.Join(dir, "loc.csv"), QualifierCol: "subtype", ValueCol: "pct", Title: "Distribution of Sampled Location Types by Percentage"},
	}}
	out := filepath.Join(dir, "charts")
	var console bytes.Buffer
	r := NewRunner(out, nil)
	r.Console = &console
	r.Width = 80
	run, err := r.Run(m)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.ID == "" || len(run.Charts) != 2 {
		t.Fatalf("run: %+v", run)
	}
	fruit := run.Charts[0]
	if fruit.Path != filepath.Join(out, "fruit.png") || fruit.Categories != 3 || fruit.Demoted != 2 || fruit.Total != 100 {
		t.Fatalf("fruit record: %+v", fruit)
	}
	if fruit.Title != "Distribution of Fruits by Count" {
		t.Fatalf("default title: %q", fruit.Title)
	}
	assertPNG(t, fruit.Path)
	loc := run.Charts[1]
	if loc.Categories != 3 || loc.Demoted != 1 {
		t.Fatalf("loc record: %+v", loc)
	}
	assertPNG(t, loc.Path)
	if !strings.Contains(console.String(), "Market (Wet)") {
		t.Fatalf("console table missing composite label:\n%s", console.String())
	}
}

func TestDatasetWideExpansion(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "food_by_adult.csv", "food,melamine,sudan red,note\ndairy,40,1,x\nspice,2,30,y\ngrain,5,4,z\n")
	r := NewRunner(filepath.Join(dir, "charts"), nil)
	recs, err := r.Dataset(Descriptor{Name: "food_by_adult", Source: src, Wide: true, Output: "food_by", Title: "Distribution of Food by {column}"})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 charts, got %d", len(recs))
	}
	wantTitles := []string{"Distribution of Food by Melamine", "Distribution of Food by Sudan Red"}
	wantFiles := []string{"food_by_melamine.png", "food_by_sudan_red.png"}
	for i, rec := range recs {
		if rec.Title != wantTitles[i] || filepath.Base(rec.Path) != wantFiles[i] {
			t.Errorf("chart %d: %q %q", i, rec.Title, rec.Path)
		}
		assertPNG(t, rec.Path)
	}
}

func TestDatasetErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "bad.csv", "fruit,count\napple,1\nbanana,n/a\n")
	r := NewRunner(filepath.Join(dir, "charts"), nil)
	_, err := r.Dataset(Descriptor{Name: "bad", Source: src, ValueCol: "count"})
	var te *table.TypeError
	if !errors.As(err, &te) {
		t.Fatalf("expected TypeError, got %v", err)
	}
	_, err = r.Dataset(Descriptor{Name: "bad", Source: src, ValueCol: "weight"})
	var ce *table.ColumnError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ColumnError, got %v", err)
	}
}

const provByFood = "province,dairy,spice,meat\nHebei,5,1,2\nJilin,3,4,0\nTibet,1,0,9\n"

func TestPrepareComparisonOrientation(t *testing.T) {
	dir := t.TempDir()
	spec := ComparisonSpec{Name: "prov_by_food", Source: writeFile(t, dir, "p.csv", provByFood), RowKind: "provinces", ColumnKind: "foods"}
	r := NewRunner(filepath.Join(dir, "charts"), nil)

	foods, err := r.PrepareComparison(spec, selection.Foods)
	if err != nil {
		t.Fatalf("prepare foods: %v", err)
	}
	if !reflect.DeepEqual(foods.Options, []string{"dairy", "spice", "meat"}) {
		t.Fatalf("food options: %q", foods.Options)
	}

	provs, err := r.PrepareComparison(spec, selection.Provinces)
	if err != nil {
		t.Fatalf("prepare provinces: %v", err)
	}
	if !reflect.DeepEqual(provs.Options, []string{"Hebei", "Jilin", "Tibet"}) {
		t.Fatalf("province options: %q", provs.Options)
	}
	if provs.Table.Header[0] != "food" {
		t.Fatalf("transposed key: %q", provs.Table.Header[0])
	}

	if _, err := r.PrepareComparison(spec, selection.Adulterants); err == nil {
		t.Fatalf("expected error for a kind the comparison does not offer")
	}
}

func TestCompareProvinceIndexShownVerbatim(t *testing.T) {
	dir := t.TempDir()
	spec := ComparisonSpec{Name: "prov_by_food", Source: writeFile(t, dir, "p.csv", provByFood), RowKind: "provinces", ColumnKind: "foods"}
	r := NewRunner(filepath.Join(dir, "charts"), nil)
	c, err := r.PrepareComparison(spec, selection.Foods)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if !c.Table.Schema.Grouped {
		t.Fatalf("province index should be grouped")
	}
	res, _, err := r.Compare(c, "dairy", "meat")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	// dairy top2: Hebei, Jilin; meat top2: Tibet, Hebei
	if !reflect.DeepEqual(res.Index, []string{"Hebei", "Jilin", "Tibet"}) {
		t.Fatalf("index: %q", res.Index)
	}

	provs, err := r.PrepareComparison(spec, selection.Provinces)
	if err != nil {
		t.Fatalf("prepare provinces: %v", err)
	}
	if provs.Table.Schema.Grouped {
		t.Fatalf("food index should follow the formatting rule")
	}
}

func TestPrepareComparisonOptionsSource(t *testing.T) {
	dir := t.TempDir()
	spec := ComparisonSpec{
		Name:          "prov_by_food",
		Source:        writeFile(t, dir, "p.csv", provByFood),
		RowKind:       "provinces",
		ColumnKind:    "foods",
		OptionsSource: writeFile(t, dir, "foods.csv", "food\nmeat\nfish\ndairy\n"),
	}
	c, err := NewRunner(dir, nil).PrepareComparison(spec, selection.Foods)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if !reflect.DeepEqual(c.Options, []string{"meat", "dairy"}) {
		t.Fatalf("options: %q", c.Options)
	}
}

func TestInteractiveComparison(t *testing.T) {
	dir := t.TempDir()
	spec := ComparisonSpec{Name: "prov_by_food", Source: writeFile(t, dir, "p.csv", provByFood), RowKind: "provinces", ColumnKind: "foods", Grouped: true}
	r := NewRunner(filepath.Join(dir, "charts"), nil)
	c, err := r.PrepareComparison(spec, selection.Provinces)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	var out bytes.Buffer
	p := selection.NewPrompter(strings.NewReader("1 1\n1 3\n"), &out)
	res, path, err := r.Interactive(c, p)
	if err != nil {
		t.Fatalf("interactive: %v", err)
	}
	if !strings.Contains(out.String(), "Please enter 2 different numbers.") {
		t.Fatalf("expected re-prompt:\n%s", out.String())
	}
	if res.Title != "Hebei and Tibet" {
		t.Fatalf("title: %q", res.Title)
	}
	// Hebei top2: dairy, meat; Tibet top2: meat, dairy
	if !reflect.DeepEqual(res.Index, []string{"dairy", "meat"}) {
		t.Fatalf("index: %q", res.Index)
	}
	if filepath.Base(path) != "provinces_hebei_vs_tibet.png" {
		t.Fatalf("path: %q", path)
	}
	assertPNG(t, path)
}

func TestInteractiveInputEnds(t *testing.T) {
	dir := t.TempDir()
	spec := ComparisonSpec{Name: "p", Source: writeFile(t, dir, "p.csv", provByFood), RowKind: "provinces", ColumnKind: "foods"}
	r := NewRunner(filepath.Join(dir, "charts"), nil)
	c, err := r.PrepareComparison(spec, selection.Foods)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	_, _, err = r.Interactive(c, selection.NewPrompter(strings.NewReader(""), &bytes.Buffer{}))
	if !errors.Is(err, selection.ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
}
