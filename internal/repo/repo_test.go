package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/filter"
	"github.com/dnswlt/mdcat/internal/props"
	"github.com/dnswlt/mdcat/internal/store"
	"github.com/google/go-cmp/cmp"
)

var fixedTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func loadTestdata(t *testing.T, opts ...Option) *Repository {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)
	r, err := Load(context.Background(), store.NewDiskStore("../../testdata/catalog"), Config{}, "records", opts...)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return r
}

func mustCompile(t *testing.T, expr string) *filter.Program {
	t.Helper()
	p, err := filter.Compile(expr)
	if err != nil {
		t.Fatalf("filter.Compile(%q): %v", expr, err)
	}
	return p
}

func guids[T api.Record](rs []T) []string {
	var result []string
	for _, r := range rs {
		result = append(result, r.GetGUID())
	}
	return result
}

func TestLoad(t *testing.T) {
	r := loadTestdata(t)
	elems, rels := r.Counts()
	if elems != 9 || rels != 7 {
		t.Errorf("Counts() = %d, %d, want 9, 7", elems, rels)
	}
	e, err := r.Element(context.Background(), "g-finance")
	if err != nil {
		t.Fatalf("Element failed: %v", err)
	}
	if e.Version != 2 || e.CreatedBy != "alice" || e.SourceInfo.Path != "records/glossaries.yaml" {
		t.Errorf("unexpected element: %v (source %+v)", e, e.SourceInfo)
	}
	rel, err := r.Relationship(context.Background(), "r-related")
	if err != nil {
		t.Fatalf("Relationship failed: %v", err)
	}
	if rel.End1.Type != "GlossaryTerm" || rel.End2.GUID != "t-profit" {
		t.Errorf("unexpected ends: %s, %s", rel.End1, rel.End2)
	}
}

func TestLoadErrors(t *testing.T) {
	const glossary = `apiVersion: mdcat/v1
kind: Element
guid: g1
type: Glossary
properties:
  qualifiedName: {string: "Glossary::One"}
`
	tests := []struct {
		name    string
		content string
		config  Config
		wantErr error
	}{
		{
			name:    "duplicate element",
			content: glossary + "---\n" + glossary,
			wantErr: ErrDuplicate,
		},
		{
			name: "dangling end",
			content: glossary + `---
apiVersion: mdcat/v1
kind: Relationship
guid: r1
type: TermAnchor
end1: Glossary:g1
end2: GlossaryTerm:missing
`,
			wantErr: ErrInvalid,
		},
		{
			name: "end type mismatch",
			content: glossary + `---
apiVersion: mdcat/v1
kind: Relationship
guid: r1
type: TermAnchor
end1: Project:g1
end2: g1
`,
			wantErr: ErrInvalid,
		},
		{
			name: "invalid qualified name",
			content: `apiVersion: mdcat/v1
kind: Element
guid: g1
type: Glossary
properties:
  qualifiedName: {string: " padded "}
`,
			wantErr: ErrInvalid,
		},
		{
			name: "qualified name of wrong type",
			content: `apiVersion: mdcat/v1
kind: Element
guid: g1
type: Glossary
properties:
  qualifiedName: {int: 7}
`,
			wantErr: ErrInvalid,
		},
		{
			name:    "validation rules",
			content: glossary,
			config: Config{Validation: &ValidationRules{
				ElementTypes: &ValueRule{Values: []string{"GlossaryTerm"}},
			}},
			wantErr: ErrInvalid,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.MkdirAll(filepath.Join(dir, "records"), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, "records", "r.yaml"), []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(context.Background(), store.NewDiskStore(dir), tc.config, "records")
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, store.NewDiskStore("../../testdata/catalog"), Config{}, "records")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestReturnsCopies(t *testing.T) {
	r := loadTestdata(t)
	ctx := context.Background()
	e, err := r.Element(ctx, "t-revenue")
	if err != nil {
		t.Fatal(err)
	}
	e.Properties.Set("displayName", props.StringValue("changed"))
	e.Classifications[0].Name = "Changed"

	again, err := r.Element(ctx, "t-revenue")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := props.Get(again.Properties, props.DisplayName); got != "Revenue" {
		t.Errorf("displayName = %q after modifying a copy", got)
	}
	if again.Classifications[0].Name != "SpineObject" {
		t.Errorf("classification = %q after modifying a copy", again.Classifications[0].Name)
	}
}

func TestRelationshipsAndRelatedElements(t *testing.T) {
	r := loadTestdata(t)
	ctx := context.Background()

	rels, err := r.Relationships(ctx, "t-revenue", "")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"r-anchor-revenue", "r-cat-revenue", "r-related"}, guids(rels)); diff != "" {
		t.Errorf("Relationships() mismatch (-want +got):\n%s", diff)
	}

	rels, err = r.Relationships(ctx, "g-finance", "TermAnchor")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"r-anchor-profit", "r-anchor-revenue"}, guids(rels)); diff != "" {
		t.Errorf("Relationships(TermAnchor) mismatch (-want +got):\n%s", diff)
	}

	related, err := r.RelatedElements(ctx, "t-profit", "")
	if err != nil {
		t.Fatal(err)
	}
	type view struct {
		Rel, Elem string
		AtEnd1    bool
	}
	var got []view
	for _, re := range related {
		got = append(got, view{re.Relationship.GUID, re.Element.GUID, re.ElementAtEnd1})
	}
	want := []view{
		{"r-anchor-profit", "g-finance", true},
		{"r-related", "t-revenue", true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RelatedElements() mismatch (-want +got):\n%s", diff)
	}

	if _, err := r.Relationships(ctx, "nope", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Relationships(nope) error = %v, want ErrNotFound", err)
	}
	if _, err := r.RelatedElements(ctx, "nope", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("RelatedElements(nope) error = %v, want ErrNotFound", err)
	}
}

func TestFindElements(t *testing.T) {
	r := loadTestdata(t)
	ctx := context.Background()
	tests := []struct {
		typeName string
		expr     string
		want     []string
	}{
		{typeName: "Glossary", want: []string{"g-finance", "g-hr"}},
		{typeName: "GlossaryTerm", expr: `"SpineObject" in classifications`, want: []string{"t-revenue"}},
		{expr: `properties.qualifiedName.startsWith("Schema::")`, want: []string{"a-id", "s-id", "s-order"}},
		{typeName: "Glossary", expr: `status == "DELETED"`},
	}
	for _, tc := range tests {
		t.Run(tc.typeName+"/"+tc.expr, func(t *testing.T) {
			got, err := r.FindElements(ctx, tc.typeName, mustCompile(t, tc.expr))
			if err != nil {
				t.Fatalf("FindElements failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, guids(got)); diff != "" {
				t.Errorf("FindElements() mismatch (-want +got):\n%s", diff)
			}
		})
	}
	all, err := r.FindElements(ctx, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 9 || !slices.IsSortedFunc(all, func(a, b *api.Element) int { return strings.Compare(a.GUID, b.GUID) }) {
		t.Errorf("FindElements(nil) returned %v", guids(all))
	}
}

func TestInsertUpdateDeleteInMemory(t *testing.T) {
	r := loadTestdata(t)
	ctx := context.Background()

	e, err := r.InsertElement(ctx, &api.Element{
		Type:       "GlossaryTerm",
		Version:    42,
		Properties: props.NewBag().Set("qualifiedName", props.StringValue("Term::Cost")),
	}, "bob")
	if err != nil {
		t.Fatalf("InsertElement failed: %v", err)
	}
	if e.GUID == "" || e.Version != 1 || e.CreatedBy != "bob" || !e.CreatedAt.Equal(fixedTime) {
		t.Errorf("unexpected inserted element: %+v", e)
	}
	if _, err := r.InsertElement(ctx, &api.Element{GUID: e.GUID, Type: "GlossaryTerm"}, "bob"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second InsertElement error = %v, want ErrDuplicate", err)
	}

	upd := e.Copy()
	upd.Properties.Set("displayName", props.StringValue("Cost"))
	upd.CreatedBy = "mallory"
	got, err := r.UpdateElement(ctx, upd, "carol")
	if err != nil {
		t.Fatalf("UpdateElement failed: %v", err)
	}
	if got.Version != 2 || got.CreatedBy != "bob" || got.UpdatedBy != "carol" {
		t.Errorf("unexpected updated element: %+v", got)
	}
	if dn, _ := props.Get(got.Properties, props.DisplayName); dn != "Cost" {
		t.Errorf("displayName = %q, want Cost", dn)
	}
	upd.Type = "Glossary"
	if _, err := r.UpdateElement(ctx, upd, "carol"); !errors.Is(err, ErrInvalid) {
		t.Errorf("UpdateElement with new type: error = %v, want ErrInvalid", err)
	}
	if _, err := r.UpdateElement(ctx, &api.Element{GUID: "nope"}, "carol"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateElement(nope) error = %v, want ErrNotFound", err)
	}

	rel, err := r.InsertRelationship(ctx, &api.Relationship{
		Type: "TermAnchor",
		End1: api.ElementRef{GUID: "g-hr"},
		End2: api.ElementRef{GUID: e.GUID},
	})
	if err != nil {
		t.Fatalf("InsertRelationship failed: %v", err)
	}
	if rel.End1.Type != "Glossary" || rel.End2.Type != "GlossaryTerm" {
		t.Errorf("end types not filled in: %s, %s", rel.End1, rel.End2)
	}
	if _, err := r.InsertRelationship(ctx, &api.Relationship{
		Type: "TermAnchor",
		End1: api.ElementRef{GUID: "g-hr"},
		End2: api.ElementRef{GUID: "missing"},
	}); !errors.Is(err, ErrInvalid) {
		t.Errorf("InsertRelationship with missing end: error = %v, want ErrInvalid", err)
	}

	if err := r.DeleteElement(ctx, e.GUID); !errors.Is(err, ErrRelationshipsRemain) {
		t.Errorf("DeleteElement error = %v, want ErrRelationshipsRemain", err)
	}
	if err := r.DeleteRelationship(ctx, rel.GUID); err != nil {
		t.Fatalf("DeleteRelationship failed: %v", err)
	}
	if err := r.DeleteElement(ctx, e.GUID); err != nil {
		t.Fatalf("DeleteElement failed: %v", err)
	}
	if _, err := r.Element(ctx, e.GUID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Element after delete: error = %v, want ErrNotFound", err)
	}
	rels, err := r.Relationships(ctx, "g-hr", "")
	if err != nil || len(rels) != 0 {
		t.Errorf("Relationships(g-hr) = %v, %v, want none", rels, err)
	}
	if err := r.DeleteRelationship(ctx, rel.GUID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteRelationship error = %v, want ErrNotFound", err)
	}
}

func TestWriteBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "records"), 0755); err != nil {
		t.Fatal(err)
	}
	const glossary = `apiVersion: mdcat/v1
kind: Element
guid: g1
type: Glossary
properties:
  qualifiedName: {string: "Glossary::One"}
`
	if err := os.WriteFile(filepath.Join(dir, "records", "glossaries.yaml"), []byte(glossary), 0644); err != nil {
		t.Fatal(err)
	}
	st := store.NewDiskStore(dir)
	ctx := context.Background()
	r, err := Load(ctx, st, Config{}, "records", WithWriteBack(st, "records/new.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.InsertElement(ctx, &api.Element{GUID: "t1", Type: "GlossaryTerm"}, "bob"); err != nil {
		t.Fatalf("InsertElement failed: %v", err)
	}
	if _, err := r.InsertRelationship(ctx, &api.Relationship{
		GUID: "r1",
		Type: "TermAnchor",
		End1: api.ElementRef{GUID: "g1"},
		End2: api.ElementRef{GUID: "t1"},
	}); err != nil {
		t.Fatalf("InsertRelationship failed: %v", err)
	}
	g, err := r.Element(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	g.Status = "DRAFT"
	if _, err := r.UpdateElement(ctx, g, "bob"); err != nil {
		t.Fatalf("UpdateElement failed: %v", err)
	}

	// A fresh load sees all changes.
	reloaded, err := Load(ctx, st, Config{}, "records")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if elems, rels := reloaded.Counts(); elems != 2 || rels != 1 {
		t.Errorf("Counts() after reload = %d, %d, want 2, 1", elems, rels)
	}
	g, err = reloaded.Element(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if g.Status != "DRAFT" || g.Version != 1 || g.SourceInfo.Path != "records/glossaries.yaml" {
		t.Errorf("unexpected reloaded glossary: %v status=%s", g, g.Status)
	}

	if err := r.DeleteRelationship(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRelationship failed: %v", err)
	}
	if err := r.DeleteElement(ctx, "t1"); err != nil {
		t.Fatalf("DeleteElement failed: %v", err)
	}
	records, err := store.ReadRecords(st, "records/new.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("records/new.yaml still has %d records", len(records))
	}
}
