package catalog

import (
	"strings"
	"testing"
)

func TestIsValidAdditionalProperty(t *testing.T) {
	testCases := []struct {
		name        string
		key         string
		expectValid bool
	}{
		// --- Valid Cases ---
		{
			name:        "simple key",
			key:         "owner",
			expectValid: true,
		},
		{
			name:        "qualified key",
			key:         "finance.example.com/cost-center",
			expectValid: true,
		},
		{
			name:        "key with all allowed characters",
			key:         "my.app_key-v1",
			expectValid: true,
		},
		{
			name:        "max length key name (63 chars)",
			key:         "a123456789a123456789a123456789a123456789a123456789a123456789ab1",
			expectValid: true,
		},
		// --- Invalid Cases ---
		{
			name:        "empty key",
			key:         "",
			expectValid: false,
		},
		{
			name:        "key name too long (64 chars)",
			key:         "a123456789a123456789a123456789a123456789a123456789a123456789abc1",
			expectValid: false,
		},
		{
			name:        "empty prefix",
			key:         "/name",
			expectValid: false,
		},
		{
			name:        "uppercase prefix",
			key:         "Example.com/name",
			expectValid: false,
		},
		{
			name:        "two slashes",
			key:         "a/b/c",
			expectValid: false,
		},
		{
			name:        "name ending in dash",
			key:         "name-",
			expectValid: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidAdditionalProperty(tc.key, "any value"); got != tc.expectValid {
				t.Errorf("IsValidAdditionalProperty(%q) = %v, want %v", tc.key, got, tc.expectValid)
			}
		})
	}
}

func TestIsValidQualifiedName(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{"Glossary::Finance", true},
		{"Term::Net Revenue (EUR)", true},
		{"Begriff::Umsatz/Ertrag", true},
		{"", false},
		{" leading", false},
		{"trailing ", false},
		{"line\nbreak", false},
		{strings.Repeat("x", 1025), false},
	}
	for _, tc := range testCases {
		if got := IsValidQualifiedName(tc.input); got != tc.want {
			t.Errorf("IsValidQualifiedName(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsValidPropertyName(t *testing.T) {
	for _, s := range []string{"qualifiedName", "_internal", "level2"} {
		if !IsValidPropertyName(s) {
			t.Errorf("IsValidPropertyName(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "2level", "with space", "dotted.name"} {
		if IsValidPropertyName(s) {
			t.Errorf("IsValidPropertyName(%q) = true, want false", s)
		}
	}
}

func TestNewBean(t *testing.T) {
	for _, c := range BeanClasses() {
		b, err := NewBean(c)
		if err != nil {
			t.Fatalf("NewBean(%s) failed: %v", c, err)
		}
		if b.BeanClass() != c {
			t.Errorf("NewBean(%s).BeanClass() = %s", c, b.BeanClass())
		}
	}
	if _, err := NewBean("Unknown"); err == nil {
		t.Error("NewBean(Unknown) succeeded")
	}
	if BeanClass("Unknown").IsValid() {
		t.Error("Unknown bean class reported as valid")
	}
}
