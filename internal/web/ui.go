package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
)

func urlencode(s string) (string, error) {
	return url.PathEscape(s), nil
}

type NavBar []*NavBarItem

type NavBarItem struct {
	path   string
	Title  string
	Active bool
}

func (n *NavBarItem) URI() string {
	return n.path
}

func NavItem(path, title string) *NavBarItem {
	return &NavBarItem{path: path, Title: title}
}

func NewNavBar(items ...*NavBarItem) NavBar {
	return items
}

// SetActive marks the item whose path is the longest prefix of activePath.
// Detail pages such as /ui/glossaries/{guid} thus activate their list page.
func (ns NavBar) SetActive(activePath string) NavBar {
	activePath = strings.TrimSuffix(activePath, "/")
	var best *NavBarItem
	bestLen := -1
	for _, n := range ns {
		p := strings.TrimSuffix(n.path, "/")
		if activePath != p && !strings.HasPrefix(activePath, p+"/") {
			continue
		}
		if len(p) > bestLen {
			best, bestLen = n, len(p)
		}
	}
	if best != nil {
		best.Active = true
	}
	return ns
}

func markdown(input string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(input), &buf); err != nil {
		return "", fmt.Errorf("failed to process markdown: %v", err)
	}
	return template.HTML(buf.String()), nil
}
