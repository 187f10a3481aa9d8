package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/sift-cli/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so bound variables do not
// leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and stdin, returning its output.
func execCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCLI is a helper to execute the root command with args.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, "", args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCLI_AggregateWritesChartAndMarkdown(t *testing.T) {
	home := isolateHome(t)
	src := writeFile(t, filepath.Join(home, "fruit.csv"), "fruit,count\napple,50\nbanana,30\ncherry,15\ndate,5\n")
	charts := filepath.Join(home, "charts")
	md := filepath.Join(home, "fruit.md")

	runCLI(t, "aggregate", src, "--value", "count", "--threshold", "20", "--charts-dir", charts, "--markdown", md, "--quiet")

	if _, err := os.Stat(filepath.Join(charts, "fruit.png")); err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	b, err := os.ReadFile(md)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(b), "| Other | 20 |") || !strings.Contains(string(b), "(2 merged into Other)") {
		t.Fatalf("unexpected markdown:\n%s", b)
	}
}

func TestCLI_AggregateRequiresValue(t *testing.T) {
	home := isolateHome(t)
	src := writeFile(t, filepath.Join(home, "fruit.csv"), "fruit,count\napple,1\n")
	if _, err := execCmd(t, "", "aggregate", src); err == nil {
		t.Fatalf("expected error without --value")
	}
}

func TestCLI_InitListRunIndex(t *testing.T) {
	home := isolateHome(t)
	proj := filepath.Join(home, "proj")

	out := runCLI(t, "init", proj)
	if !strings.Contains(out, "Manifest initialized") {
		t.Fatalf("init output: %q", out)
	}
	if _, err := execCmd(t, "", "init", proj); err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}
	out = runCLI(t, "list", filepath.Join(proj, "sift.yaml"))
	for _, want := range []string{"- food_by_adult: (every numeric column) -> food_by", "- prov_by_food: provinces by foods"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list missing %q:\n%s", want, out)
		}
	}

	writeFile(t, filepath.Join(proj, "data", "fruit.csv"), "fruit,count\napple,50\nbanana,30\ncherry,15\ndate,5\n")
	writeFile(t, filepath.Join(proj, "data", "adult.csv"), "food,melamine,lead\ndairy,40,3\ngrain,5,9\n")
	manifest := writeFile(t, filepath.Join(proj, "run.yaml"), `
datasets:
  - name: fruit
    source: data/fruit.csv
    value: count
  - name: food_by_adult
    source: data/adult.csv
    wide: true
    output_name: food_by
`)
	charts := filepath.Join(home, "charts")
	runCLI(t, "run", manifest, "--index", "--quiet", "--charts-dir", charts)

	b, err := os.ReadFile(filepath.Join(charts, "index.json"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	var run pipeline.Run
	if err := json.Unmarshal(b, &run); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if run.ID == "" || len(run.Charts) != 3 {
		t.Fatalf("index: %+v", run)
	}
	for _, name := range []string{"fruit.png", "food_by_melamine.png", "food_by_lead.png"} {
		if _, err := os.Stat(filepath.Join(charts, name)); err != nil {
			t.Fatalf("missing chart %s: %v", name, err)
		}
	}
}

func TestCLI_AggregateAndRunWriteToCommandOutput(t *testing.T) {
	home := isolateHome(t)
	src := writeFile(t, filepath.Join(home, "fruit.csv"), "fruit,count\napple,50\nbanana,30\ncherry,15\ndate,5\n")
	charts := filepath.Join(home, "charts")

	out := runCLI(t, "aggregate", src, "--value", "count", "--threshold", "20", "--charts-dir", charts)
	for _, want := range []string{"Apple", "2 categories below 20 folded into Other", "✓ Wrote " + filepath.Join(charts, "fruit.png")} {
		if !strings.Contains(out, want) {
			t.Fatalf("aggregate output missing %q:\n%s", want, out)
		}
	}

	manifest := writeFile(t, filepath.Join(home, "run.yaml"), "datasets:\n  - name: fruit\n    source: fruit.csv\n    value: count\n")
	out = runCLI(t, "run", manifest, "--index", "--charts-dir", charts)
	for _, want := range []string{"[1/1] Processing fruit...", "✓ Distribution of Fruits by Count -> ", "✓ Wrote run index to "} {
		if !strings.Contains(out, want) {
			t.Fatalf("run output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_CompareInvalidKindExits(t *testing.T) {
	isolateHome(t)
	out, err := execCmd(t, "z\n", "compare", "whatever.csv")
	var ee *exitError
	if !errors.As(err, &ee) || ee.code != 1 {
		t.Fatalf("expected exitError{1}, got %v", err)
	}
	if !strings.Contains(out, "Invalid input.") {
		t.Fatalf("output: %q", out)
	}
}

func TestCLI_CompareInteractive(t *testing.T) {
	home := isolateHome(t)
	src := writeFile(t, filepath.Join(home, "food_by_adult.csv"), "food,melamine,sudan_red,lead\ndairy,40,1,3\nspice,2,30,1\ngrain,5,4,9\ncandy,7,12,2\n")
	charts := filepath.Join(home, "charts")

	out, err := execCmd(t, "a\n2 2\n1 2\n", "compare", src, "--charts-dir", charts)
	if err != nil {
		t.Fatalf("compare: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Compare (f)oods, (a)dulterants or (p)rovinces?",
		"Select 2 adulterants to compare:",
		"Please enter 2 different numbers.",
		"Melamines and Sudan Reds",
		"✓ Wrote",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(charts, "adulterants_melamine_vs_sudan_red.png")); err != nil {
		t.Fatalf("chart not written: %v", err)
	}
}

func TestCLI_CompareInputEnds(t *testing.T) {
	home := isolateHome(t)
	src := writeFile(t, filepath.Join(home, "t.csv"), "food,melamine,lead\ndairy,1,2\n")
	if _, err := execCmd(t, "", "compare", src, "--kind", "a", "--charts-dir", filepath.Join(home, "charts")); err == nil {
		t.Fatalf("expected error when input ends")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolateHome(t)
	runCLI(t, "config", "set", "default_threshold", "5")
	runCLI(t, "config", "set", "charts_dir", "out")
	if _, err := os.Stat(filepath.Join(home, ".sift", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCLI(t, "config", "show")
	if !strings.Contains(out, "default_threshold: 5") || !strings.Contains(out, "charts_dir: out") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, err := execCmd(t, "", "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
