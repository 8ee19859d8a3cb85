package web

import (
	"strings"
	"testing"
)

func TestNavBar_SetActive(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/ui/glossaries", "Glossaries"},
		{"/ui/glossaries/", "Glossaries"},
		{"/ui/glossaries/g-finance", "Glossaries"},
		{"/ui/terms/t-revenue", "Terms"},
		{"/ui/glossariesx", ""},
		{"/health", ""},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			nav := NewNavBar(
				NavItem("/ui/glossaries", "Glossaries"),
				NavItem("/ui/terms", "Terms"),
			).SetActive(tc.path)
			got := ""
			for _, n := range nav {
				if n.Active {
					if got != "" {
						t.Fatalf("more than one active item: %q and %q", got, n.Title)
					}
					got = n.Title
				}
			}
			if got != tc.want {
				t.Errorf("active item = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	got, err := markdown("*Revenue* is **income**.")
	if err != nil {
		t.Fatalf("markdown failed: %v", err)
	}
	want := "<p><em>Revenue</em> is <strong>income</strong>.</p>"
	if strings.TrimSpace(string(got)) != want {
		t.Errorf("markdown() = %q, want %q", got, want)
	}
}

func TestURLEncode(t *testing.T) {
	got, err := urlencode("a b/c")
	if err != nil {
		t.Fatal(err)
	}
	if got != "a%20b%2Fc" {
		t.Errorf("urlencode() = %q", got)
	}
}
