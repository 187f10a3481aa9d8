package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/sift-cli/internal/utils"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	for _, body := range []string{"first", "second"} {
		if err := utils.SafeWriteFile(path, []byte(body)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "second" {
		t.Fatalf("got %q, %v", b, err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil || len(entries) != 1 {
		t.Fatalf("temp file left behind: %v %v", entries, err)
	}
	if err := utils.SafeWriteFile(filepath.Join(path, "missing", "x.png"), nil); err == nil {
		t.Fatalf("expected error for a missing directory")
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "{\n  \"a\": 1\n}\n" {
		t.Fatalf("got %q", b)
	}
}

func TestFindFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := utils.EnsureDir(nested); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := filepath.Join(root, "sift.yaml")
	if err := os.WriteFile(want, []byte("datasets: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := utils.FindFile(nested, "sift.yaml")
	if err != nil || got != want {
		t.Fatalf("FindFile = %q, %v", got, err)
	}
	_, err = utils.FindFile(nested, "missing.yaml")
	if err == nil || !strings.Contains(err.Error(), "missing.yaml not found") {
		t.Fatalf("expected not found, got %v", err)
	}
}
