// This file contains the API types that describe raw repository records as
// they are stored in record files: elements, relationships and their
// classifications. All domain attributes live in property bags; the strongly
// typed beans in package catalog are produced from these records by
// package convert.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/dnswlt/mdcat/internal/props"
	"gopkg.in/yaml.v3"
)

// Record is the interface implemented by all record kinds (Element, Relationship).
type Record interface {
	GetKind() string
	GetGUID() string
	// GetType returns the name of the record's metadata type, e.g. "GlossaryTerm".
	GetType() string
	GetVersion() int64
	// GetClassifications returns the record's classifications in source order.
	// Relationships carry no classifications and always return nil.
	GetClassifications() []*Classification
	// GetProperties returns the record's property bag (never a copy).
	GetProperties() *props.Bag

	// GetSourceInfo returns internal bookkeeping data, e.g. for error logging.
	GetSourceInfo() *SourceInfo
	SetSourceInfo(si *SourceInfo)

	String() string
}

// File and line information shared by all records.
// Can be used in error messages.
type SourceInfo struct {
	Node *yaml.Node // The raw YAML source code from which the record was parsed.
	Path string     // The path from which the record was read.
	Line int        // The first line number in Path where the record was found.
}

// Classification is a named, optionally parameterized tag attached to an element.
type Classification struct {
	// The classification's type name, e.g. "Confidentiality".
	// [required]
	Name string `yaml:"name"`
	// [optional]
	Properties *props.Bag `yaml:"properties,omitempty"`
}

func (c *Classification) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s%s", c.Name, c.Properties)
}

// Element

type Element struct {
	APIVersion string `yaml:"apiVersion,omitempty"`
	Kind       string `yaml:"kind,omitempty"`
	// The element's globally unique identifier.
	// [required]
	GUID string `yaml:"guid"`
	// The element's metadata type name.
	// [required]
	Type string `yaml:"type"`
	// Incremented on every update.
	// [optional]
	Version int64 `yaml:"version,omitempty"`
	// Lifecycle status, e.g. ACTIVE, DRAFT, DELETED.
	// [optional]
	Status    string     `yaml:"status,omitempty"`
	CreatedBy string     `yaml:"createdBy,omitempty"`
	UpdatedBy string     `yaml:"updatedBy,omitempty"`
	CreatedAt *time.Time `yaml:"createdAt,omitempty"`
	UpdatedAt *time.Time `yaml:"updatedAt,omitempty"`
	// [optional]
	Classifications []*Classification `yaml:"classifications,omitempty"`
	// [optional]
	Properties *props.Bag `yaml:"properties,omitempty"`

	SourceInfo *SourceInfo `yaml:"-"`
}

func (e *Element) GetKind() string                       { return YAMLKindElement }
func (e *Element) GetGUID() string                       { return e.GUID }
func (e *Element) GetType() string                       { return e.Type }
func (e *Element) GetVersion() int64                     { return e.Version }
func (e *Element) GetClassifications() []*Classification { return e.Classifications }
func (e *Element) GetProperties() *props.Bag             { return e.Properties }
func (e *Element) GetSourceInfo() *SourceInfo            { return e.SourceInfo }
func (e *Element) SetSourceInfo(si *SourceInfo)          { e.SourceInfo = si }

func (e *Element) String() string {
	if e == nil {
		return "Element<nil>"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Element{guid=%s, type=%s, version=%d", e.GUID, e.Type, e.Version)
	if len(e.Classifications) > 0 {
		cls := make([]string, len(e.Classifications))
		for i, c := range e.Classifications {
			cls[i] = c.String()
		}
		fmt.Fprintf(&sb, ", classifications=[%s]", strings.Join(cls, ", "))
	}
	fmt.Fprintf(&sb, ", properties=%s}", e.Properties)
	return sb.String()
}

// Copy returns a deep copy of e. SourceInfo is shared.
func (e *Element) Copy() *Element {
	if e == nil {
		return nil
	}
	c := *e
	c.Properties = e.Properties.Clone()
	if e.Classifications != nil {
		c.Classifications = make([]*Classification, len(e.Classifications))
		for i, cl := range e.Classifications {
			if cl != nil {
				c.Classifications[i] = &Classification{Name: cl.Name, Properties: cl.Properties.Clone()}
			}
		}
	}
	if e.CreatedAt != nil {
		t := *e.CreatedAt
		c.CreatedAt = &t
	}
	if e.UpdatedAt != nil {
		t := *e.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

// Ref returns a reference to e.
func (e *Element) Ref() ElementRef {
	ref := ElementRef{GUID: e.GUID, Type: e.Type}
	if qn, err := props.Get(e.Properties, props.QualifiedName); err == nil {
		ref.UniqueName = qn
	}
	return ref
}

// ElementRef identifies the element at one end of a relationship.
// In YAML it can be written as a map or in short form "<type>:<guid>".
type ElementRef struct {
	// [required]
	GUID string `yaml:"guid"`
	// [optional]
	Type string `yaml:"type,omitempty"`
	// The element's qualified name, if known.
	// [optional]
	UniqueName string `yaml:"uniqueName,omitempty"`
}

func (r ElementRef) String() string {
	if r.Type == "" {
		return r.GUID
	}
	return r.Type + ":" + r.GUID
}

// Relationship

type Relationship struct {
	APIVersion string `yaml:"apiVersion,omitempty"`
	Kind       string `yaml:"kind,omitempty"`
	// [required]
	GUID string `yaml:"guid"`
	// The relationship's type name, e.g. "TermCategorization".
	// [required]
	Type string `yaml:"type"`
	// [optional]
	Version int64  `yaml:"version,omitempty"`
	Status  string `yaml:"status,omitempty"`
	// [required]
	End1 ElementRef `yaml:"end1"`
	// [required]
	End2 ElementRef `yaml:"end2"`
	// [optional]
	Properties *props.Bag `yaml:"properties,omitempty"`

	SourceInfo *SourceInfo `yaml:"-"`
}

func (r *Relationship) GetKind() string                       { return YAMLKindRelationship }
func (r *Relationship) GetGUID() string                       { return r.GUID }
func (r *Relationship) GetType() string                       { return r.Type }
func (r *Relationship) GetVersion() int64                     { return r.Version }
func (r *Relationship) GetClassifications() []*Classification { return nil }
func (r *Relationship) GetProperties() *props.Bag             { return r.Properties }
func (r *Relationship) GetSourceInfo() *SourceInfo            { return r.SourceInfo }
func (r *Relationship) SetSourceInfo(si *SourceInfo)          { r.SourceInfo = si }

func (r *Relationship) String() string {
	if r == nil {
		return "Relationship<nil>"
	}
	return fmt.Sprintf("Relationship{guid=%s, type=%s, version=%d, end1=%s, end2=%s, properties=%s}",
		r.GUID, r.Type, r.Version, r.End1, r.End2, r.Properties)
}

// Copy returns a deep copy of r. SourceInfo is shared.
func (r *Relationship) Copy() *Relationship {
	if r == nil {
		return nil
	}
	c := *r
	c.Properties = r.Properties.Clone()
	return &c
}

// OtherEnd returns the end of r that does not refer to guid, and whether
// guid is at end 1.
func (r *Relationship) OtherEnd(guid string) (ElementRef, bool) {
	if r.End1.GUID == guid {
		return r.End2, true
	}
	return r.End1, false
}

// RelatedElement pairs a relationship with the element found at one of its
// ends, as seen from the element at the other end.
type RelatedElement struct {
	Relationship *Relationship
	Element      *Element
	// ElementAtEnd1 is true if Element is at end 1 of Relationship.
	ElementAtEnd1 bool
}

func (r *RelatedElement) String() string {
	if r == nil {
		return "RelatedElement<nil>"
	}
	return fmt.Sprintf("RelatedElement{relationship=%s, element=%s, atEnd1=%t}", r.Relationship, r.Element, r.ElementAtEnd1)
}
