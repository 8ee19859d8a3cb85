package convert

import (
	"fmt"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
)

// NewSchemaTypeConverter returns a converter for SchemaType beans.
//
// fromCompositeWithSupplementary takes the schema type element as primary
// record, the linked schema types as supplementary elements, and the
// relationships between them. Linked types that are referenced but not
// supplied are represented by their header only.
func NewSchemaTypeConverter(opts ...Option) *Converter[*catalog.SchemaType] {
	return newConverter(catalog.ClassSchemaType, "SchemaTypeConverter", map[Variant]handler[*catalog.SchemaType]{
		VariantElement: func(c *call, st *catalog.SchemaType, req Request) error {
			return fillSchemaTypeFromElement(c, st, req.(ElementRequest).Element)
		},
		VariantSchemaType: func(c *call, st *catalog.SchemaType, req Request) error {
			return fillSchemaTypeFromRequest(c, st, req.(SchemaTypeRequest))
		},
		VariantComposite: func(c *call, st *catalog.SchemaType, req Request) error {
			return fillSchemaTypeComposite(c, st, req.(CompositeRequest))
		},
	}, opts...)
}

func fillSchemaTypeFromElement(c *call, st *catalog.SchemaType, e *api.Element) error {
	h, err := BuildHeader(e)
	if err != nil {
		return err
	}
	st.Header = h
	r := c.reader(e.Properties)
	st.AttributeCount = take(r, props.AttributeCount)
	st.ValidValueSetGUID = take(r, props.ValidValuesSetGUID)
	readSchemaTypeProperties(r, st)
	return r.err
}

func fillSchemaTypeFromRequest(c *call, st *catalog.SchemaType, req SchemaTypeRequest) error {
	h := *req.Root
	h.CreateTime = copyTime(h.CreateTime)
	h.UpdateTime = copyTime(h.UpdateTime)
	h.Classifications = nil
	if req.TypeName != "" {
		h.TypeName = req.TypeName
	}
	cls, err := ExtractClassifications(req.Classifications)
	if err != nil {
		return err
	}
	if cls == nil {
		// Fall back to the root header's classifications, copied.
		cls, err = copyClassifications(req.Root.Classifications)
		if err != nil {
			return err
		}
	}
	h.Classifications = cls
	st.Header = &h

	r := c.reader(req.Properties)
	readSchemaTypeProperties(r, st)
	st.AttributeCount = req.AttributeCount
	st.ValidValueSetGUID = req.ValidValueSetGUID
	st.ExternalSchemaType = req.ExternalSchemaType
	st.MapFromElement = req.MapFromElement
	st.MapToElement = req.MapToElement
	st.SchemaOptions = req.Options
	if req.WithLinkedGUIDs {
		st.ExternalSchemaTypeGUID = req.ExternalSchemaTypeGUID
		st.MapFromElementGUID = req.MapFromElementGUID
		st.MapToElementGUID = req.MapToElementGUID
	}
	return r.err
}

func fillSchemaTypeComposite(c *call, st *catalog.SchemaType, req CompositeRequest) error {
	if err := fillSchemaTypeFromElement(c, st, req.Element); err != nil {
		return err
	}
	supplementary := make(map[string]*api.Element, len(req.Supplementary))
	for i, e := range req.Supplementary {
		if e == nil {
			return missingRecord(fmt.Sprintf("supplementary element #%d is nil", i))
		}
		supplementary[e.GUID] = e
	}
	linked := func(ref api.ElementRef) (*catalog.SchemaType, error) {
		e, ok := supplementary[ref.GUID]
		if !ok {
			return &catalog.SchemaType{Header: stubFromRef(ref).Header}, nil
		}
		var lt catalog.SchemaType
		if err := fillSchemaTypeFromElement(c, &lt, e); err != nil {
			return nil, err
		}
		return &lt, nil
	}

	attributes := 0
	for _, rel := range req.Relationships {
		if rel == nil {
			return missingRecord("nil relationship in schema type relationships")
		}
		if rel.End1.GUID != req.Element.GUID {
			continue
		}
		var err error
		switch rel.Type {
		case catalog.RelSchemaTypeOption:
			var opt *catalog.SchemaType
			if opt, err = linked(rel.End2); err == nil {
				st.SchemaOptions = append(st.SchemaOptions, opt)
			}
		case catalog.RelLinkedExternalSchemaType:
			st.ExternalSchemaTypeGUID = rel.End2.GUID
			st.ExternalSchemaType, err = linked(rel.End2)
		case catalog.RelMapFromElementType:
			st.MapFromElementGUID = rel.End2.GUID
			st.MapFromElement, err = linked(rel.End2)
		case catalog.RelMapToElementType:
			st.MapToElementGUID = rel.End2.GUID
			st.MapToElement, err = linked(rel.End2)
		case catalog.RelAttributeForSchema:
			attributes++
		case catalog.RelValidValuesAssignment:
			st.ValidValueSetGUID = rel.End2.GUID
		}
		if err != nil {
			return err
		}
	}
	if attributes > 0 {
		st.AttributeCount = attributes
	}
	return nil
}

func readSchemaTypeProperties(r *reader, st *catalog.SchemaType) {
	st.QualifiedName = take(r, props.QualifiedName)
	st.DisplayName = take(r, props.DisplayName)
	st.Description = take(r, props.Description)
	st.VersionNumber = take(r, props.VersionIdentifier)
	st.Author = take(r, props.Author)
	st.Usage = take(r, props.Usage)
	st.EncodingStandard = take(r, props.EncodingStandard)
	st.Namespace = take(r, props.Namespace)
	st.IsDeprecated = take(r, props.IsDeprecated)
	st.DataType = take(r, props.DataType)
	st.DefaultValue = take(r, props.DefaultValue)
	st.AdditionalProperties = take(r, props.AdditionalProperties)
	st.ExtendedProperties = r.extended()
}

func copyClassifications(cls []catalog.Classification) ([]catalog.Classification, error) {
	if cls == nil {
		return nil, nil
	}
	out := make([]catalog.Classification, len(cls))
	for i, c := range cls {
		if c.Name == "" {
			return nil, &Error{Kind: KindMalformedClassification, Detail: fmt.Sprintf("root classification #%d has no name", i)}
		}
		out[i] = catalog.Classification{Name: c.Name, Properties: c.Properties.Clone()}
	}
	return out, nil
}
