package convert

import (
	"errors"
	"strings"
	"testing"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
	"github.com/google/go-cmp/cmp"
)

// bagComparer lets cmp compare property bags by content.
var bagComparer = cmp.Comparer(func(a, b *props.Bag) bool { return a.Equal(b) })

func TestBuildHeaderClassificationsRoundTrip(t *testing.T) {
	raw := []*api.Classification{
		{Name: "Confidentiality", Properties: props.NewBag().Set("confidentialityLevel", props.IntValue(3))},
		{Name: "SpineObject"},
		{Name: "SubjectArea", Properties: props.NewBag().Set("name", props.StringValue("Finance"))},
		{Name: "Confidentiality", Properties: props.NewBag().Set("confidentialityLevel", props.IntValue(1))},
	}
	e := &api.Element{GUID: "t1", Type: "GlossaryTerm", Version: 2, Status: "ACTIVE", Classifications: raw}

	h, err := BuildHeader(e)
	if err != nil {
		t.Fatalf("BuildHeader failed: %v", err)
	}
	want := &catalog.ElementHeader{
		GUID:     "t1",
		TypeName: "GlossaryTerm",
		Version:  2,
		Status:   "ACTIVE",
	}
	for _, c := range raw {
		want.Classifications = append(want.Classifications, catalog.Classification{Name: c.Name, Properties: c.Properties})
	}
	if diff := cmp.Diff(want, h, bagComparer); diff != "" {
		t.Errorf("BuildHeader() mismatch (-want +got):\n%s", diff)
	}

	// The header must not share bags with the record.
	h.Classifications[0].Properties.Set("changed", props.BoolValue(true))
	if raw[0].Properties.Has("changed") {
		t.Error("header shares classification properties with the record")
	}
}

func TestBuildHeaderNilRecord(t *testing.T) {
	var e *api.Element
	var rel *api.Relationship
	for _, r := range []api.Record{nil, e, rel} {
		_, err := BuildHeader(r)
		if !errors.Is(err, ErrMissingSourceRecord) {
			t.Errorf("BuildHeader(%#v) error = %v, want ErrMissingSourceRecord", r, err)
		}
	}
}

func TestBuildHeaderMalformed(t *testing.T) {
	t.Run("nil classification", func(t *testing.T) {
		e := &api.Element{GUID: "g1", Type: "Glossary", Classifications: []*api.Classification{{Name: "Taxonomy"}, nil}}
		_, err := BuildHeader(e)
		if !errors.Is(err, ErrMalformedClassification) {
			t.Fatalf("BuildHeader() error = %v, want ErrMalformedClassification", err)
		}
		var ce *Error
		if !errors.As(err, &ce) || !strings.Contains(ce.Record, "guid=g1") {
			t.Errorf("error does not carry the record's string form: %v", err)
		}
	})
	t.Run("unnamed classification", func(t *testing.T) {
		e := &api.Element{GUID: "g1", Type: "Glossary", Classifications: []*api.Classification{{}}}
		if _, err := BuildHeader(e); !errors.Is(err, ErrMalformedClassification) {
			t.Errorf("BuildHeader() error = %v, want ErrMalformedClassification", err)
		}
	})
	t.Run("no guid", func(t *testing.T) {
		e := &api.Element{Type: "Glossary"}
		if _, err := BuildHeader(e); !errors.Is(err, ErrMalformedElement) {
			t.Errorf("BuildHeader() error = %v, want ErrMalformedElement", err)
		}
	})
}

func TestExtractClassificationsAbsence(t *testing.T) {
	got, err := ExtractClassifications(nil)
	if err != nil || got != nil {
		t.Errorf("ExtractClassifications(nil) = %v, %v; want nil, nil", got, err)
	}
	got, err = ExtractClassifications([]*api.Classification{})
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("ExtractClassifications([]) = %#v, %v; want empty non-nil", got, err)
	}
}

func TestFindClassificationFirstMatchWins(t *testing.T) {
	first := props.NewBag().Set("n", props.IntValue(1))
	second := props.NewBag().Set("n", props.IntValue(2))
	cls := []catalog.Classification{
		{Name: "Bar"},
		{Name: "Foo", Properties: first},
		{Name: "Foo", Properties: second},
	}
	for i := 0; i < 3; i++ {
		got, ok := FindClassification("Foo", cls)
		if !ok || got != first {
			t.Fatalf("FindClassification(Foo) = %v, %v; want first entry", got, ok)
		}
	}
	if _, ok := FindClassification("Baz", cls); ok {
		t.Error("FindClassification(Baz) found a classification")
	}
	if got, ok := FindClassification("Bar", cls); !ok || got != nil {
		t.Errorf("FindClassification(Bar) = %v, %v; want nil, true", got, ok)
	}
}

func TestBuildStub(t *testing.T) {
	e := &api.Element{
		GUID:       "g1",
		Type:       "Glossary",
		Properties: props.NewBag().Set("qualifiedName", props.StringValue("Glossary::Finance")),
	}
	s, err := BuildStub(e)
	if err != nil {
		t.Fatalf("BuildStub failed: %v", err)
	}
	if s.UniqueName != "Glossary::Finance" || s.GUID() != "g1" {
		t.Errorf("BuildStub() = %+v", s)
	}
	if !e.Properties.Has("qualifiedName") {
		t.Error("BuildStub consumed the qualified name")
	}

	s, err = BuildStub(&api.Relationship{GUID: "r1", Type: "TermAnchor"})
	if err != nil {
		t.Fatalf("BuildStub failed: %v", err)
	}
	if s.UniqueName != "" {
		t.Errorf("UniqueName = %q, want empty", s.UniqueName)
	}

	_, err = BuildStub(&api.Element{GUID: "g2", Type: "Glossary", Properties: props.NewBag().Set("qualifiedName", props.IntValue(1))})
	if !errors.Is(err, ErrPropertyType) || !errors.Is(err, props.ErrTypeMismatch) {
		t.Errorf("BuildStub() error = %v, want property type error", err)
	}
}
