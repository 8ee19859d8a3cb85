package convert

import (
	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
)

// NewLineConverter returns a converter for Line beans, which are built from
// relationships. With fromElementAndRelationship, the supplied element
// replaces the bare reference at its end of the relationship.
func NewLineConverter(opts ...Option) *Converter[*catalog.Line] {
	return newConverter(catalog.ClassLine, "LineConverter", map[Variant]handler[*catalog.Line]{
		VariantRelationship: func(c *call, l *catalog.Line, req Request) error {
			return fillLine(c, l, req.(RelationshipRequest).Relationship)
		},
		VariantRelatedElement: func(c *call, l *catalog.Line, req Request) error {
			re := req.(RelatedElementRequest).Related
			if err := fillLine(c, l, re.Relationship); err != nil {
				return err
			}
			return attachEnd(l, re.Element)
		},
		VariantElementAndRelationship: func(c *call, l *catalog.Line, req Request) error {
			er := req.(ElementAndRelationshipRequest)
			if er.Relationship == nil {
				return missingRecord("fromElementAndRelationship requires a relationship")
			}
			if err := fillLine(c, l, er.Relationship); err != nil {
				return err
			}
			return attachEnd(l, er.Element)
		},
	}, opts...)
}

func fillLine(c *call, l *catalog.Line, rel *api.Relationship) error {
	h, err := BuildHeader(rel)
	if err != nil {
		return err
	}
	if rel.End1.GUID == "" || rel.End2.GUID == "" {
		return malformedElement(rel, "relationship end without GUID")
	}
	l.Header = h
	l.Name = rel.Type
	l.End1 = stubFromRef(rel.End1)
	l.End2 = stubFromRef(rel.End2)

	r := c.reader(rel.Properties)
	l.Description = take(r, props.Description)
	l.Expression = take(r, props.Expression)
	l.Steward = take(r, props.Steward)
	l.Source = take(r, props.Source)
	l.Status = take(r, props.TermRelationshipStatus)
	l.Confidence = take(r, props.Confidence)
	l.EffectiveFrom = take(r, props.EffectiveFrom)
	l.EffectiveTo = take(r, props.EffectiveTo)
	l.AdditionalProperties = take(r, props.AdditionalProperties)
	l.ExtendedProperties = r.extended()
	return r.err
}

// attachEnd replaces the end stub of l that refers to e with a full stub.
func attachEnd(l *catalog.Line, e *api.Element) error {
	stub, err := BuildStub(e)
	if err != nil {
		return err
	}
	switch e.GUID {
	case l.End1.GUID():
		l.End1 = stub
	case l.End2.GUID():
		l.End2 = stub
	default:
		return malformedElement(e, "element is not at either end of relationship "+l.Header.GUID)
	}
	return nil
}
