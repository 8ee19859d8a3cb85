package convert

import (
	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
)

// NewGlossaryConverter returns a converter for Glossary beans. It supports
// fromElement and fromRelatedElement (the related element is the glossary).
func NewGlossaryConverter(opts ...Option) *Converter[*catalog.Glossary] {
	return newConverter(catalog.ClassGlossary, "GlossaryConverter", map[Variant]handler[*catalog.Glossary]{
		VariantElement: func(c *call, g *catalog.Glossary, req Request) error {
			return fillGlossary(c, g, req.(ElementRequest).Element)
		},
		VariantRelatedElement: func(c *call, g *catalog.Glossary, req Request) error {
			return fillGlossary(c, g, req.(RelatedElementRequest).Related.Element)
		},
	}, opts...)
}

func fillGlossary(c *call, g *catalog.Glossary, e *api.Element) error {
	h, err := BuildHeader(e)
	if err != nil {
		return err
	}
	g.Header = h

	r := c.reader(e.Properties)
	g.QualifiedName = take(r, props.QualifiedName)
	g.Name = take(r, props.DisplayName)
	g.Description = take(r, props.Description)
	g.Usage = take(r, props.Usage)
	g.Language = take(r, props.Language)
	g.AdditionalProperties = take(r, props.AdditionalProperties)
	g.ExtendedProperties = r.extended()

	taxonomy, isTaxonomy := FindClassification(catalog.ClassificationTaxonomy, h.Classifications)
	canonical, isCanonical := FindClassification(catalog.ClassificationCanonicalVocabulary, h.Classifications)
	g.OrganizingPrinciple = classificationValue(r, taxonomy, props.OrganizingPrinciple)
	g.Scope = classificationValue(r, canonical, props.Scope)
	switch {
	case isTaxonomy && isCanonical:
		g.NodeType = catalog.NodeTaxonomyAndCanonicalGlossary
	case isTaxonomy:
		g.NodeType = catalog.NodeTaxonomy
	case isCanonical:
		g.NodeType = catalog.NodeCanonicalGlossary
	default:
		g.NodeType = catalog.NodeGlossary
	}
	return r.err
}
