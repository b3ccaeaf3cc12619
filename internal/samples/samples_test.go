package samples

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 6 || got[0] != "How many movies are available?" {
		t.Fatalf("Load() = %v", got)
	}
	got[0] = "mutated"
	if Defaults()[0] != "How many movies are available?" {
		t.Fatal("Defaults() shares its backing array")
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	content := "questions:\n  - How many stores are there?\n  - \"  \"\n  - Which staff member processed the most payments?\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"How many stores are there?", "Which staff member processed the most payments?"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("questions: []\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("questions: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.yaml"), empty, broken} {
		if _, err := Load(path); err == nil {
			t.Fatalf("Load(%q) expected error", path)
		}
	}
}
