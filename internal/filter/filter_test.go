package filter

import (
	"testing"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/props"
)

func TestMatch(t *testing.T) {
	term := &api.Element{
		GUID:    "t-revenue",
		Type:    "GlossaryTerm",
		Version: 3,
		Status:  "ACTIVE",
		Classifications: []*api.Classification{
			{Name: "SpineObject"},
			{Name: "Confidentiality", Properties: props.NewBag().Set("confidentialityLevel", props.IntValue(2))},
		},
		Properties: props.NewBag().
			Set("displayName", props.StringValue("Revenue")).
			Set("termStatus", props.EnumValue("ACTIVE")).
			Set("confidence", props.IntValue(80)).
			Set("keywords", props.StringListValue([]string{"sales", "income"})),
	}
	bare := &api.Element{GUID: "g1", Type: "Glossary"}

	tests := []struct {
		expr      string
		term      bool
		bare      bool
		wantError bool
	}{
		{expr: "", term: true, bare: true},
		{expr: "  ", term: true, bare: true},
		{expr: `type == "GlossaryTerm"`, term: true},
		{expr: `"SpineObject" in classifications`, term: true},
		{expr: `version > 2 && status == "ACTIVE"`, term: true},
		{expr: `properties.displayName.startsWith("Rev")`, term: true, wantError: true},
		{expr: `has(properties.displayName) && properties.displayName == "Revenue"`, term: true},
		{expr: `has(properties.termStatus) && properties.termStatus == "ACTIVE"`, term: true},
		{expr: `has(properties.confidence) && properties.confidence >= 50`, term: true},
		{expr: `has(properties.keywords) && "sales" in properties.keywords`, term: true},
		{expr: `size(classifications) == 0`, bare: true},
		{expr: `guid.matches("^g[0-9]+$")`, bare: true},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			p, err := Compile(tc.expr)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tc.expr, err)
			}
			got, err := p.Match(term)
			if err != nil {
				t.Fatalf("Match(term) failed: %v", err)
			}
			if got != tc.term {
				t.Errorf("Match(term) = %v, want %v", got, tc.term)
			}
			got, err = p.Match(bare)
			if tc.wantError {
				if err == nil {
					t.Errorf("Match(bare) succeeded, want missing key error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Match(bare) failed: %v", err)
			}
			if got != tc.bare {
				t.Errorf("Match(bare) = %v, want %v", got, tc.bare)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, expr := range []string{
		`type ==`,
		`owner == "bob"`,
		`version + 1`,
	} {
		if _, err := Compile(expr); err == nil {
			t.Errorf("Compile(%q) succeeded, want error", expr)
		}
	}
}

func TestNilProgramMatchesAll(t *testing.T) {
	var p *Program
	if ok, err := p.Match(&api.Element{GUID: "x"}); !ok || err != nil {
		t.Errorf("nil Program: Match = %v, %v", ok, err)
	}
}
