package convert

import (
	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
)

// Variant tags the shape of a conversion request.
type Variant string

const (
	VariantElement                Variant = "fromElement"
	VariantRelatedElement         Variant = "fromRelatedElement"
	VariantElementAndRelationship Variant = "fromElementAndRelationship"
	VariantComplex                Variant = "fromComplex"
	VariantComposite              Variant = "fromCompositeWithSupplementary"
	VariantRelationship           Variant = "fromRelationshipOnly"
	VariantSchemaType             Variant = "fromSchemaType"
)

var variantMethods = map[Variant]string{
	VariantElement:                "FromElement",
	VariantRelatedElement:         "FromRelatedElement",
	VariantElementAndRelationship: "FromElementAndRelationship",
	VariantComplex:                "FromComplex",
	VariantComposite:              "FromCompositeWithSupplementary",
	VariantRelationship:           "FromRelationshipOnly",
	VariantSchemaType:             "FromSchemaType",
}

// Method returns the name of the Converter method serving v.
func (v Variant) Method() string {
	if m, ok := variantMethods[v]; ok {
		return m
	}
	return "Convert"
}

// Variants returns all request variants in declaration order.
func Variants() []Variant {
	return []Variant{
		VariantElement,
		VariantRelatedElement,
		VariantElementAndRelationship,
		VariantComplex,
		VariantComposite,
		VariantRelationship,
		VariantSchemaType,
	}
}

// Request is the union of source record shapes a converter may receive.
// It is implemented by the *Request types in this package only.
type Request interface {
	Variant() Variant
	// hasPrimary reports whether the request's primary record is present.
	hasPrimary() bool
}

// ElementRequest converts a single element.
type ElementRequest struct {
	Element *api.Element
}

// RelatedElementRequest converts an element found through a relationship,
// or the relationship itself.
type RelatedElementRequest struct {
	Related *api.RelatedElement
}

// ElementAndRelationshipRequest converts an element together with one of its
// relationships.
type ElementAndRelationshipRequest struct {
	Element      *api.Element
	Relationship *api.Relationship
}

// ComplexRequest converts a primary element together with its relationships.
type ComplexRequest struct {
	Element       *api.Element
	Relationships []*api.Relationship
}

// CompositeRequest converts a primary element together with supplementary
// elements and the relationships that link them.
type CompositeRequest struct {
	Element       *api.Element
	Supplementary []*api.Element
	Relationships []*api.Relationship
}

// RelationshipRequest converts a relationship on its own.
type RelationshipRequest struct {
	Relationship *api.Relationship
}

// SchemaTypeRequest converts a schema type whose header was already built,
// together with its optionally linked type beans and option list.
type SchemaTypeRequest struct {
	Root            *catalog.ElementHeader
	TypeName        string
	Properties      *props.Bag
	Classifications []*api.Classification

	AttributeCount    int
	ValidValueSetGUID string

	ExternalSchemaType *catalog.SchemaType
	MapFromElement     *catalog.SchemaType
	MapToElement       *catalog.SchemaType
	Options            []*catalog.SchemaType

	// WithLinkedGUIDs requests the GUIDs below to be set on the bean, so
	// that the caller can reference linked types instead of embedding them.
	WithLinkedGUIDs        bool
	ExternalSchemaTypeGUID string
	MapFromElementGUID     string
	MapToElementGUID       string
}

func (ElementRequest) Variant() Variant                { return VariantElement }
func (RelatedElementRequest) Variant() Variant         { return VariantRelatedElement }
func (ElementAndRelationshipRequest) Variant() Variant { return VariantElementAndRelationship }
func (ComplexRequest) Variant() Variant                { return VariantComplex }
func (CompositeRequest) Variant() Variant              { return VariantComposite }
func (RelationshipRequest) Variant() Variant           { return VariantRelationship }
func (SchemaTypeRequest) Variant() Variant             { return VariantSchemaType }

func (r ElementRequest) hasPrimary() bool { return r.Element != nil }
func (r RelatedElementRequest) hasPrimary() bool {
	return r.Related != nil && r.Related.Element != nil && r.Related.Relationship != nil
}
func (r ElementAndRelationshipRequest) hasPrimary() bool { return r.Element != nil }
func (r ComplexRequest) hasPrimary() bool                { return r.Element != nil }
func (r CompositeRequest) hasPrimary() bool              { return r.Element != nil }
func (r RelationshipRequest) hasPrimary() bool           { return r.Relationship != nil }
func (r SchemaTypeRequest) hasPrimary() bool             { return r.Root != nil }
