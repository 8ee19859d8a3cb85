package convert

import (
	"fmt"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
)

func isNilRecord(r api.Record) bool {
	switch x := r.(type) {
	case nil:
		return true
	case *api.Element:
		return x == nil
	case *api.Relationship:
		return x == nil
	}
	return false
}

// BuildHeader builds the identity of a bean from its source record.
// The returned header shares no mutable state with record.
func BuildHeader(record api.Record) (*catalog.ElementHeader, error) {
	if isNilRecord(record) {
		return nil, missingRecord("no record to build header from")
	}
	if record.GetGUID() == "" {
		return nil, malformedElement(record, "record has no GUID")
	}
	if record.GetType() == "" {
		return nil, malformedElement(record, "record has no type name")
	}
	h := &catalog.ElementHeader{
		GUID:     record.GetGUID(),
		TypeName: record.GetType(),
		Version:  record.GetVersion(),
	}
	switch x := record.(type) {
	case *api.Element:
		h.Status = x.Status
		h.CreatedBy = x.CreatedBy
		h.UpdatedBy = x.UpdatedBy
		h.CreateTime = copyTime(x.CreatedAt)
		h.UpdateTime = copyTime(x.UpdatedAt)
	case *api.Relationship:
		h.Status = x.Status
	}
	cls, err := ExtractClassifications(record.GetClassifications())
	if err != nil {
		if ce, ok := err.(*Error); ok {
			ce.Record = record.String()
		}
		return nil, err
	}
	h.Classifications = cls
	return h, nil
}

// BuildStub builds a stub for record: its header plus its qualified name.
// The record's properties are not consumed.
func BuildStub(record api.Record) (*catalog.ElementStub, error) {
	h, err := BuildHeader(record)
	if err != nil {
		return nil, err
	}
	qn, err := props.Get(record.GetProperties(), props.QualifiedName)
	if err != nil {
		return nil, &Error{Kind: KindPropertyType, Record: record.String(), Cause: err}
	}
	return &catalog.ElementStub{Header: h, UniqueName: qn}, nil
}

// ExtractClassifications maps raw classifications to their bean form,
// preserving order. It returns nil if raw is nil. Nil entries and entries
// without a name are malformed.
func ExtractClassifications(raw []*api.Classification) ([]catalog.Classification, error) {
	if raw == nil {
		return nil, nil
	}
	cls := make([]catalog.Classification, 0, len(raw))
	for i, c := range raw {
		if c == nil {
			return nil, &Error{Kind: KindMalformedClassification, Detail: fmt.Sprintf("classification #%d is nil", i)}
		}
		if c.Name == "" {
			return nil, &Error{Kind: KindMalformedClassification, Detail: fmt.Sprintf("classification #%d has no name", i)}
		}
		cls = append(cls, catalog.Classification{
			Name:       c.Name,
			Properties: c.Properties.Clone(),
		})
	}
	return cls, nil
}

// FindClassification returns the properties of the first classification
// named name. Later classifications of the same name are ignored.
// The returned bag may be nil if the classification has no properties.
func FindClassification(name string, cls []catalog.Classification) (*props.Bag, bool) {
	for _, c := range cls {
		if c.Name == name {
			return c.Properties, true
		}
	}
	return nil, false
}

// stubFromRef builds a stub from a relationship end, for elements that are
// referenced but were not supplied.
func stubFromRef(ref api.ElementRef) *catalog.ElementStub {
	return &catalog.ElementStub{
		Header:     &catalog.ElementHeader{GUID: ref.GUID, TypeName: ref.Type},
		UniqueName: ref.UniqueName,
	}
}
