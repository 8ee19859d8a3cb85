package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/props"
	"github.com/google/go-cmp/cmp"
)

func TestReadRecords(t *testing.T) {
	t.Run("valid records", func(t *testing.T) {
		content := `
apiVersion: mdcat/v1
kind: Element
guid: g1
type: Glossary
properties:
  qualifiedName: {string: "Glossary::Finance"}
---
---
apiVersion: mdcat/v1
kind: Relationship
guid: r1
type: TermAnchor
end1: Glossary:g1
end2: GlossaryTerm:t1
`
		st := writeTempFile(t, "records.yaml", content)
		records, err := ReadRecords(st, "records.yaml")
		if err != nil {
			t.Fatalf("ReadRecords() failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("len(records) = %d, want 2", len(records))
		}
		e, ok := records[0].(*api.Element)
		if !ok {
			t.Fatalf("records[0] is not an *Element: %T", records[0])
		}
		if qn, _ := props.Get(e.Properties, props.QualifiedName); qn != "Glossary::Finance" {
			t.Errorf("qualifiedName = %q", qn)
		}
		if si := e.GetSourceInfo(); si.Path != "records.yaml" || si.Node == nil {
			t.Errorf("SourceInfo = %+v", si)
		}
		if _, ok := records[1].(*api.Relationship); !ok {
			t.Errorf("records[1] is not a *Relationship: %T", records[1])
		}
	})

	t.Run("empty file", func(t *testing.T) {
		st := writeTempFile(t, "empty.yaml", "")
		records, err := ReadRecords(st, "empty.yaml")
		if err != nil || len(records) != 0 {
			t.Errorf("ReadRecords() = %v, %v; want no records", records, err)
		}
	})

	errorCases := map[string]string{
		"no kind":       "guid: g1\ntype: Glossary\n",
		"invalid kind":  "kind: Table\nguid: g1\n",
		"unknown field": "kind: Element\nguid: g1\ntype: Glossary\nowner: bob\n",
		"invalid yaml":  "invalid: yaml: here\n",
		"bad property":  "kind: Element\nguid: g1\ntype: Glossary\nproperties:\n  x: {float: 1.5}\n",
	}
	for name, content := range errorCases {
		t.Run(name, func(t *testing.T) {
			st := writeTempFile(t, "bad.yaml", content)
			if _, err := ReadRecords(st, "bad.yaml"); err == nil {
				t.Error("ReadRecords() succeeded, want error")
			}
		})
	}

	t.Run("non-existent file", func(t *testing.T) {
		_, err := ReadRecords(NewDiskStore(t.TempDir()), "missing.yaml")
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("ReadRecords() error = %v, want ErrNotExist", err)
		}
	})
}

func TestInsertOrReplaceAndDeleteRecord(t *testing.T) {
	st := NewDiskStore(t.TempDir())
	g1 := &api.Element{GUID: "g1", Type: "Glossary", Properties: props.NewBag().Set("displayName", props.StringValue("One"))}
	g2 := &api.Element{GUID: "g2", Type: "Glossary"}

	for _, r := range []api.Record{g1, g2} {
		if err := InsertOrReplaceRecord(st, "out/glossaries.yaml", r); err != nil {
			t.Fatalf("InsertOrReplaceRecord(%s) failed: %v", r.GetGUID(), err)
		}
	}
	updated := g1.Copy()
	updated.Properties.Set("displayName", props.StringValue("Uno"))
	if err := InsertOrReplaceRecord(st, "out/glossaries.yaml", updated); err != nil {
		t.Fatalf("InsertOrReplaceRecord(update) failed: %v", err)
	}

	records, err := ReadRecords(st, "out/glossaries.yaml")
	if err != nil {
		t.Fatalf("ReadRecords() failed: %v", err)
	}
	var guids []string
	for _, r := range records {
		guids = append(guids, r.GetGUID())
	}
	if diff := cmp.Diff([]string{"g1", "g2"}, guids); diff != "" {
		t.Errorf("record order mismatch (-want +got):\n%s", diff)
	}
	if name, _ := props.Get(records[0].GetProperties(), props.DisplayName); name != "Uno" {
		t.Errorf("displayName = %q, want Uno", name)
	}

	if err := DeleteRecord(st, "out/glossaries.yaml", g1); err != nil {
		t.Fatalf("DeleteRecord() failed: %v", err)
	}
	if err := DeleteRecord(st, "out/glossaries.yaml", g1); err == nil {
		t.Error("second DeleteRecord() succeeded")
	}
	records, err = ReadRecords(st, "out/glossaries.yaml")
	if err != nil || len(records) != 1 || records[0].GetGUID() != "g2" {
		t.Errorf("after delete: %v, %v", records, err)
	}
}

func TestDiskStoreRejectsEscapingPaths(t *testing.T) {
	st := NewDiskStore(t.TempDir())
	if _, err := st.ReadFile("../etc/passwd"); err == nil {
		t.Error("ReadFile(../etc/passwd) succeeded")
	}
	if err := st.WriteFile("../x.yaml", nil); err == nil {
		t.Error("WriteFile(../x.yaml) succeeded")
	}
	if _, err := st.Store("main"); !errors.Is(err, ErrNoSuchRef) {
		t.Errorf("Store(main) error = %v, want ErrNoSuchRef", err)
	}
}

func TestRecordFiles(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"records/b.yaml", "records/a.yml", "records/notes.txt", "records/sub/c.YAML", "other/d.yaml"} {
		p := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := RecordFiles(NewDiskStore(dir), "records")
	if err != nil {
		t.Fatalf("RecordFiles() failed: %v", err)
	}
	want := []string{"records/a.yml", "records/b.yaml", "records/sub/c.YAML"}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("RecordFiles() mismatch (-want +got):\n%s", diff)
	}
}

func writeTempFile(t *testing.T, name, content string) Store {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0666); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return NewDiskStore(dir)
}
