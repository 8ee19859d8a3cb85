package convert

import (
	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
)

// NewGlossaryCategoryConverter returns a converter for GlossaryCategory beans.
// fromComplex resolves the anchoring glossary (CategoryAnchor) and the
// parent category (CategoryHierarchyLink with this category at end 2).
func NewGlossaryCategoryConverter(opts ...Option) *Converter[*catalog.GlossaryCategory] {
	return newConverter(catalog.ClassGlossaryCategory, "GlossaryCategoryConverter", map[Variant]handler[*catalog.GlossaryCategory]{
		VariantElement: func(c *call, gc *catalog.GlossaryCategory, req Request) error {
			return fillCategory(c, gc, req.(ElementRequest).Element)
		},
		VariantRelatedElement: func(c *call, gc *catalog.GlossaryCategory, req Request) error {
			return fillCategory(c, gc, req.(RelatedElementRequest).Related.Element)
		},
		VariantComplex: func(c *call, gc *catalog.GlossaryCategory, req Request) error {
			cr := req.(ComplexRequest)
			if err := fillCategory(c, gc, cr.Element); err != nil {
				return err
			}
			for _, rel := range cr.Relationships {
				if rel == nil {
					return missingRecord("nil relationship in category relationships")
				}
				if rel.End2.GUID != cr.Element.GUID {
					continue
				}
				switch rel.Type {
				case catalog.RelCategoryAnchor:
					if gc.Glossary == nil {
						gc.Glossary = stubFromRef(rel.End1)
					}
				case catalog.RelCategoryHierarchyLink:
					if gc.ParentCategory == nil {
						gc.ParentCategory = stubFromRef(rel.End1)
					}
				}
			}
			return nil
		},
	}, opts...)
}

func fillCategory(c *call, gc *catalog.GlossaryCategory, e *api.Element) error {
	h, err := BuildHeader(e)
	if err != nil {
		return err
	}
	gc.Header = h

	r := c.reader(e.Properties)
	gc.QualifiedName = take(r, props.QualifiedName)
	gc.Name = take(r, props.DisplayName)
	gc.Description = take(r, props.Description)
	gc.AdditionalProperties = take(r, props.AdditionalProperties)
	gc.ExtendedProperties = r.extended()

	subjectArea, _ := FindClassification(catalog.ClassificationSubjectArea, h.Classifications)
	gc.SubjectAreaName = classificationValue(r, subjectArea, props.Name)
	return r.err
}
