package docs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dnswlt/mdcat/internal/repo"
	"github.com/dnswlt/mdcat/internal/store"
	"github.com/dnswlt/mdcat/internal/subjectarea"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	bs, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(bs)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	r, err := repo.Load(ctx, store.NewDiskStore("../../testdata/catalog"), repo.Config{}, "records")
	if err != nil {
		t.Fatalf("repo.Load: %v", err)
	}
	out := t.TempDir()
	gen := NewGenerator(subjectarea.NewClient(r), "docs")
	if err := gen.Generate(ctx, out); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	root := readFile(t, filepath.Join(out, "index.md"))
	for _, want := range []string{
		"* [Finance](g-finance/index.md) - *Taxonomy*",
		"* [Human Resources](g-hr/index.md) - *CanonicalGlossary*",
	} {
		if !strings.Contains(root, want) {
			t.Errorf("index.md does not contain %q:\n%s", want, root)
		}
	}

	finance := readFile(t, filepath.Join(out, "g-finance", "index.md"))
	for _, want := range []string{
		"* [Profit](terms/t-profit.md)",
		"* [Revenue](terms/t-revenue.md) - *Income from sales*",
		"* Metrics",
	} {
		if !strings.Contains(finance, want) {
			t.Errorf("g-finance/index.md does not contain %q:\n%s", want, finance)
		}
	}

	revenue := readFile(t, filepath.Join(out, "g-finance", "terms", "t-revenue.md"))
	if !strings.Contains(revenue, "# Revenue") || !strings.Contains(revenue, "* c-metrics") {
		t.Errorf("t-revenue.md has unexpected content:\n%s", revenue)
	}
}

func TestGenerateKeepsEditedTermDocs(t *testing.T) {
	ctx := context.Background()
	r, err := repo.Load(ctx, store.NewDiskStore("../../testdata/catalog"), repo.Config{}, "records")
	if err != nil {
		t.Fatalf("repo.Load: %v", err)
	}
	out := t.TempDir()
	termFile := filepath.Join(out, "g-finance", "terms", "t-profit.md")
	if err := os.MkdirAll(filepath.Dir(termFile), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(termFile, []byte("edited"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := NewGenerator(subjectarea.NewClient(r), "docs").Generate(ctx, out); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := readFile(t, termFile); got != "edited" {
		t.Errorf("term doc was overwritten: %q", got)
	}
}
