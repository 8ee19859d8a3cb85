package convert

import (
	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
)

// NewGlossaryTermConverter returns a converter for GlossaryTerm beans.
//
// In addition to fromElement and fromRelatedElement it supports fromComplex:
// the term's TermAnchor relationship yields its glossary, and its
// TermCategorization relationships yield its categories.
func NewGlossaryTermConverter(opts ...Option) *Converter[*catalog.GlossaryTerm] {
	return newConverter(catalog.ClassGlossaryTerm, "GlossaryTermConverter", map[Variant]handler[*catalog.GlossaryTerm]{
		VariantElement: func(c *call, t *catalog.GlossaryTerm, req Request) error {
			return fillTerm(c, t, req.(ElementRequest).Element)
		},
		VariantRelatedElement: func(c *call, t *catalog.GlossaryTerm, req Request) error {
			return fillTerm(c, t, req.(RelatedElementRequest).Related.Element)
		},
		VariantComplex: func(c *call, t *catalog.GlossaryTerm, req Request) error {
			cr := req.(ComplexRequest)
			if err := fillTerm(c, t, cr.Element); err != nil {
				return err
			}
			for _, rel := range cr.Relationships {
				if rel == nil {
					return missingRecord("nil relationship in term relationships")
				}
				// The glossary and the categories are at end 1.
				if rel.End2.GUID != cr.Element.GUID {
					continue
				}
				switch rel.Type {
				case catalog.RelTermAnchor:
					if t.Glossary == nil {
						t.Glossary = stubFromRef(rel.End1)
					}
				case catalog.RelTermCategorization:
					t.Categories = append(t.Categories, stubFromRef(rel.End1))
				}
			}
			return nil
		},
	}, opts...)
}

func fillTerm(c *call, t *catalog.GlossaryTerm, e *api.Element) error {
	h, err := BuildHeader(e)
	if err != nil {
		return err
	}
	t.Header = h

	r := c.reader(e.Properties)
	t.QualifiedName = take(r, props.QualifiedName)
	t.Name = take(r, props.DisplayName)
	t.Description = take(r, props.Description)
	t.Summary = take(r, props.Summary)
	t.Examples = take(r, props.Examples)
	t.Abbreviation = take(r, props.Abbreviation)
	t.Usage = take(r, props.Usage)
	t.TermStatus = take(r, props.TermStatus)
	t.AdditionalProperties = take(r, props.AdditionalProperties)
	t.ExtendedProperties = r.extended()

	_, t.SpineObject = FindClassification(catalog.ClassificationSpineObject, h.Classifications)
	_, t.SpineAttribute = FindClassification(catalog.ClassificationSpineAttribute, h.Classifications)
	_, t.ObjectIdentifier = FindClassification(catalog.ClassificationObjectIdentifier, h.Classifications)
	subjectArea, _ := FindClassification(catalog.ClassificationSubjectArea, h.Classifications)
	t.SubjectAreaName = classificationValue(r, subjectArea, props.Name)
	confidentiality, _ := FindClassification(catalog.ClassificationConfidentiality, h.Classifications)
	t.ConfidentialityLevel = classificationValue(r, confidentiality, props.ConfidentialityLevel)
	return r.err
}
