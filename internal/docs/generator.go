package docs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/subjectarea"
)

// Generator builds a Markdown documentation tree for all glossaries.
type Generator struct {
	client *subjectarea.Client
	userID string
}

func NewGenerator(client *subjectarea.Client, userID string) *Generator {
	return &Generator{client: client, userID: userID}
}

// Generate builds the documentation in the output directory.
//
// Index pages are always rewritten. Term pages are only created if they do
// not exist yet, so they can be edited by hand afterwards.
func (g *Generator) Generate(ctx context.Context, outputDir string) error {
	// 1. Generate Main Index (Glossaries)
	glossaries, err := g.client.FindGlossaries(ctx, g.userID, "", subjectarea.Paging{})
	if err != nil {
		return err
	}
	sort.Slice(glossaries, func(i, j int) bool {
		return glossaries[i].QualifiedName < glossaries[j].QualifiedName
	})
	if err := writeIndex(outputDir, glossariesTemplate, struct {
		Title string
		Items []*catalog.Glossary
	}{
		Title: "Glossaries",
		Items: glossaries,
	}); err != nil {
		return err
	}

	// 2. Generate Glossary Indexes (Terms and Categories)
	for _, glossary := range glossaries {
		guid := glossary.Header.GUID
		glossaryDir := filepath.Join(outputDir, guid)
		terms, err := g.client.GetGlossaryTerms(ctx, g.userID, guid, subjectarea.Paging{})
		if err != nil {
			return err
		}
		categories, err := g.client.GetGlossaryCategories(ctx, g.userID, guid, subjectarea.Paging{})
		if err != nil {
			return err
		}
		sort.Slice(terms, func(i, j int) bool {
			return terms[i].QualifiedName < terms[j].QualifiedName
		})
		sort.Slice(categories, func(i, j int) bool {
			return categories[i].QualifiedName < categories[j].QualifiedName
		})
		if err := writeIndex(glossaryDir, glossaryTemplate, struct {
			Glossary   *catalog.Glossary
			Terms      []*catalog.GlossaryTerm
			Categories []*catalog.GlossaryCategory
		}{
			Glossary:   glossary,
			Terms:      terms,
			Categories: categories,
		}); err != nil {
			return err
		}

		// 3. Generate Term Placeholders
		termDir := filepath.Join(glossaryDir, "terms")
		if err := os.MkdirAll(termDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", termDir, err)
		}
		for _, t := range terms {
			// Fetch the full term to include its categories.
			full, err := g.client.GetTerm(ctx, g.userID, t.Header.GUID)
			if err != nil {
				return err
			}
			filename := filepath.Join(termDir, t.Header.GUID+".md")
			if err := ensureTermDoc(filename, full); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeIndex(dir string, tmpl *template.Template, data any) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(filepath.Join(dir, "index.md"))
	if err != nil {
		return fmt.Errorf("failed to create index.md in %s: %w", dir, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", tmpl.Name(), err)
	}
	return nil
}

func ensureTermDoc(filename string, t *catalog.GlossaryTerm) error {
	if _, err := os.Stat(filename); err == nil {
		return nil
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create term doc %s: %w", filename, err)
	}
	defer f.Close()

	return termTemplate.Execute(f, t)
}

// Templates

var glossariesTemplate = template.Must(template.New("glossaries").Parse(`---
title: {{ .Title }}
---
<!-- Auto-generated by mdcat gen-docs. DO NOT EDIT. -->
# {{ .Title }}

{{ range .Items -}}
* [{{ or .Name .QualifiedName }}]({{ .Header.GUID }}/index.md){{ if .NodeType }} - *{{ .NodeType }}*{{ end }}
{{ end }}
`))

var glossaryTemplate = template.Must(template.New("glossary").Parse(`---
title: {{ or .Glossary.Name .Glossary.QualifiedName }}
---
<!-- Auto-generated by mdcat gen-docs. DO NOT EDIT. -->
# {{ or .Glossary.Name .Glossary.QualifiedName }}

{{ with .Glossary.Description }}{{ . }}

{{ end -}}
{{ if .Terms -}}
## Terms

{{ range .Terms -}}
* [{{ or .Name .QualifiedName }}](terms/{{ .Header.GUID }}.md){{ if .Summary }} - *{{ .Summary }}*{{ end }}
{{ end }}
{{- end }}
{{ if .Categories -}}
## Categories

{{ range .Categories -}}
* {{ or .Name .QualifiedName }}
{{ end }}
{{- end }}
`))

var termTemplate = template.Must(template.New("term").Parse(`# {{ or .Name .QualifiedName }}

**Qualified name**: {{ .QualifiedName }}
{{ with .Abbreviation }}
**Abbreviation**: {{ . }}
{{ end }}
{{ .Description }}
{{ with .Categories }}
## Categories

{{ range . -}}
* {{ or .UniqueName .Header.GUID }}
{{ end }}
{{- end }}
## Details

> !!! warning
>     This is an auto-generated placeholder for {{ or .Name .QualifiedName }}.
`))
