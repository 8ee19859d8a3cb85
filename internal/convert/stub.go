package convert

import (
	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
)

// NewElementStubConverter returns a converter for ElementStub beans. Stubs
// can be built from any record; for request shapes with several records the
// primary element is used.
func NewElementStubConverter(opts ...Option) *Converter[*catalog.ElementStub] {
	fill := func(s *catalog.ElementStub, record api.Record) error {
		stub, err := BuildStub(record)
		if err != nil {
			return err
		}
		*s = *stub
		return nil
	}
	return newConverter(catalog.ClassElementStub, "ElementStubConverter", map[Variant]handler[*catalog.ElementStub]{
		VariantElement: func(c *call, s *catalog.ElementStub, req Request) error {
			return fill(s, req.(ElementRequest).Element)
		},
		VariantRelatedElement: func(c *call, s *catalog.ElementStub, req Request) error {
			return fill(s, req.(RelatedElementRequest).Related.Element)
		},
		VariantElementAndRelationship: func(c *call, s *catalog.ElementStub, req Request) error {
			return fill(s, req.(ElementAndRelationshipRequest).Element)
		},
		VariantComplex: func(c *call, s *catalog.ElementStub, req Request) error {
			return fill(s, req.(ComplexRequest).Element)
		},
		VariantRelationship: func(c *call, s *catalog.ElementStub, req Request) error {
			return fill(s, req.(RelationshipRequest).Relationship)
		},
	}, opts...)
}
