package props

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestBagUnmarshalYAML(t *testing.T) {
	const input = `
qualifiedName: {string: "Glossary::Finance"}
priority: {int: 3}
size: {long: 12345678901}
isTaxonomy: {boolean: true}
createTime: {date: 2024-01-02T03:04:05Z}
tags: {stringList: [pii, finance]}
additionalProperties: {stringMap: {owner: team-a}}
status: {enum: ACTIVE}
configurationProperties:
  map:
    retries: {int: 2}
`
	var b Bag
	if err := yaml.Unmarshal([]byte(input), &b); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := NewBag().
		Set("qualifiedName", StringValue("Glossary::Finance")).
		Set("priority", IntValue(3)).
		Set("size", LongValue(12345678901)).
		Set("isTaxonomy", BoolValue(true)).
		Set("createTime", DateValue(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))).
		Set("tags", StringListValue([]string{"pii", "finance"})).
		Set("additionalProperties", StringMapValue(map[string]string{"owner": "team-a"})).
		Set("status", EnumValue("ACTIVE")).
		Set("configurationProperties", MapValue(NewBag().Set("retries", IntValue(2))))
	if !want.Equal(&b) {
		t.Errorf("Unmarshal() = %v\nwant %v", &b, want)
	}
}

func TestBagUnmarshalYAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"unknown kind", `x: {float: 1.5}`, `unknown property kind "float"`},
		{"duplicate", "x: {string: a}\nx: {string: b}", `duplicate property "x"`},
		{"bad date", `x: {date: yesterday}`, "invalid date value"},
		{"int overflow", `x: {int: 3000000000}`, "invalid int value"},
		{"bare scalar", `x: hello`, "single-key map"},
		{"not a map", `[a, b]`, "properties must be a map"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b Bag
			err := yaml.Unmarshal([]byte(tc.input), &b)
			if err == nil {
				t.Fatalf("Unmarshal succeeded, want error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Unmarshal() error = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestBagYAMLRoundTripKeepsOrder(t *testing.T) {
	b := NewBag().
		Set("zeta", StringValue("z")).
		Set("alpha", LongValue(1)).
		Set("when", DateValue(time.Date(2020, 2, 3, 4, 5, 6, 0, time.UTC)))
	data, err := yaml.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if i, j := strings.Index(string(data), "zeta"), strings.Index(string(data), "alpha"); i < 0 || j < 0 || i > j {
		t.Errorf("Marshal() lost insertion order:\n%s", data)
	}
	var got Bag
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v\n%s", err, data)
	}
	if !b.Equal(&got) {
		t.Errorf("round trip = %v, want %v", &got, b)
	}
}
