// Package catalog defines the beans returned by Subject Area operations.
// See the api package for the raw records that beans are converted from,
// and the convert package for the conversion itself.
package catalog

import (
	"fmt"
	"slices"
	"time"

	"github.com/dnswlt/mdcat/internal/props"
)

// BeanClass names a bean type. It is passed alongside conversion requests so
// that converters can construct beans and report errors without reflection.
type BeanClass string

const (
	ClassGlossary         BeanClass = "Glossary"
	ClassGlossaryTerm     BeanClass = "GlossaryTerm"
	ClassGlossaryCategory BeanClass = "GlossaryCategory"
	ClassProject          BeanClass = "Project"
	ClassLine             BeanClass = "Line"
	ClassSchemaType       BeanClass = "SchemaType"
	ClassElementStub      BeanClass = "ElementStub"
)

// Bean is the interface implemented by all bean types.
type Bean interface {
	BeanClass() BeanClass
}

var (
	beanFactories = map[BeanClass]func() Bean{
		ClassGlossary:         func() Bean { return &Glossary{} },
		ClassGlossaryTerm:     func() Bean { return &GlossaryTerm{} },
		ClassGlossaryCategory: func() Bean { return &GlossaryCategory{} },
		ClassProject:          func() Bean { return &Project{} },
		ClassLine:             func() Bean { return &Line{} },
		ClassSchemaType:       func() Bean { return &SchemaType{} },
		ClassElementStub:      func() Bean { return &ElementStub{} },
	}
)

// NewBean returns a new, empty bean of the given class.
func NewBean(class BeanClass) (Bean, error) {
	factory, ok := beanFactories[class]
	if !ok {
		return nil, fmt.Errorf("no bean factory for class %q", class)
	}
	return factory(), nil
}

func (c BeanClass) IsValid() bool {
	_, ok := beanFactories[c]
	return ok
}

func (c BeanClass) String() string { return string(c) }

// BeanClasses returns all known bean classes, sorted by name.
func BeanClasses() []BeanClass {
	cs := make([]BeanClass, 0, len(beanFactories))
	for c := range beanFactories {
		cs = append(cs, c)
	}
	slices.Sort(cs)
	return cs
}

// Identity

// Classification is a named, optionally parameterized tag attached to an element.
type Classification struct {
	Name       string     `json:"name" yaml:"name"`
	Properties *props.Bag `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// ElementHeader holds the identity of the record a bean was built from.
// It is immutable once built.
type ElementHeader struct {
	GUID     string `json:"guid" yaml:"guid"`
	TypeName string `json:"type" yaml:"type"`
	Version  int64  `json:"version,omitempty" yaml:"version,omitempty"`
	Status   string `json:"status,omitempty" yaml:"status,omitempty"`

	CreatedBy  string     `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	UpdatedBy  string     `json:"updatedBy,omitempty" yaml:"updatedBy,omitempty"`
	CreateTime *time.Time `json:"createTime,omitempty" yaml:"createTime,omitempty"`
	UpdateTime *time.Time `json:"updateTime,omitempty" yaml:"updateTime,omitempty"`

	// Classifications in source order. Nil if the record carried none.
	Classifications []Classification `json:"classifications,omitempty" yaml:"classifications,omitempty"`
}

// ElementStub is a lightweight reference to an element: its header plus its
// unique (qualified) name, if set.
type ElementStub struct {
	Header     *ElementHeader `json:"header" yaml:"header"`
	UniqueName string         `json:"uniqueName,omitempty" yaml:"uniqueName,omitempty"`
}

func (s *ElementStub) BeanClass() BeanClass { return ClassElementStub }

// GUID returns the stub's GUID, or "" for a nil stub.
func (s *ElementStub) GUID() string {
	if s == nil || s.Header == nil {
		return ""
	}
	return s.Header.GUID
}

// Glossaries

// GlossaryNodeType is derived from a glossary's classifications.
type GlossaryNodeType string

const (
	NodeGlossary                     GlossaryNodeType = "Glossary"
	NodeTaxonomy                     GlossaryNodeType = "Taxonomy"
	NodeCanonicalGlossary            GlossaryNodeType = "CanonicalGlossary"
	NodeTaxonomyAndCanonicalGlossary GlossaryNodeType = "TaxonomyAndCanonicalGlossary"
)

// Well-known classification names with defined interpretations.
const (
	ClassificationTaxonomy            = "Taxonomy"
	ClassificationCanonicalVocabulary = "CanonicalVocabulary"
	ClassificationSpineObject         = "SpineObject"
	ClassificationSpineAttribute      = "SpineAttribute"
	ClassificationObjectIdentifier    = "ObjectIdentifier"
	ClassificationConfidentiality     = "Confidentiality"
	ClassificationSubjectArea         = "SubjectArea"
	ClassificationCampaign            = "Campaign"
	ClassificationTask                = "Task"
	ClassificationPersonalProject     = "PersonalProject"
	ClassificationStudyProject        = "StudyProject"
)

// Element type names of the records that beans are built from.
const (
	TypeGlossary         = "Glossary"
	TypeGlossaryTerm     = "GlossaryTerm"
	TypeGlossaryCategory = "GlossaryCategory"
	TypeProject          = "Project"
)

// Well-known relationship type names.
const (
	RelTermAnchor               = "TermAnchor"
	RelCategoryAnchor           = "CategoryAnchor"
	RelTermCategorization       = "TermCategorization"
	RelCategoryHierarchyLink    = "CategoryHierarchyLink"
	RelSchemaTypeOption         = "SchemaTypeOption"
	RelLinkedExternalSchemaType = "LinkedExternalSchemaType"
	RelMapFromElementType       = "MapFromElementType"
	RelMapToElementType         = "MapToElementType"
	RelAttributeForSchema       = "AttributeForSchema"
	RelValidValuesAssignment    = "ValidValuesAssignment"
)

type Glossary struct {
	Header        *ElementHeader   `json:"header" yaml:"header"`
	NodeType      GlossaryNodeType `json:"nodeType" yaml:"nodeType"`
	QualifiedName string           `json:"qualifiedName" yaml:"qualifiedName"`
	Name          string           `json:"name,omitempty" yaml:"name,omitempty"`
	Description   string           `json:"description,omitempty" yaml:"description,omitempty"`
	Usage         string           `json:"usage,omitempty" yaml:"usage,omitempty"`
	Language      string           `json:"language,omitempty" yaml:"language,omitempty"`
	// Set from the Taxonomy classification.
	OrganizingPrinciple string `json:"organizingPrinciple,omitempty" yaml:"organizingPrinciple,omitempty"`
	// Set from the CanonicalVocabulary classification.
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`

	AdditionalProperties map[string]string `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	ExtendedProperties   map[string]any    `json:"extendedProperties,omitempty" yaml:"extendedProperties,omitempty"`
}

func (g *Glossary) BeanClass() BeanClass { return ClassGlossary }

type GlossaryTerm struct {
	Header        *ElementHeader `json:"header" yaml:"header"`
	QualifiedName string         `json:"qualifiedName" yaml:"qualifiedName"`
	Name          string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Summary       string         `json:"summary,omitempty" yaml:"summary,omitempty"`
	Examples      string         `json:"examples,omitempty" yaml:"examples,omitempty"`
	Abbreviation  string         `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`
	Usage         string         `json:"usage,omitempty" yaml:"usage,omitempty"`
	TermStatus    string         `json:"termStatus,omitempty" yaml:"termStatus,omitempty"`

	// Set from classifications.
	SpineObject          bool   `json:"spineObject,omitempty" yaml:"spineObject,omitempty"`
	SpineAttribute       bool   `json:"spineAttribute,omitempty" yaml:"spineAttribute,omitempty"`
	ObjectIdentifier     bool   `json:"objectIdentifier,omitempty" yaml:"objectIdentifier,omitempty"`
	SubjectAreaName      string `json:"subjectArea,omitempty" yaml:"subjectArea,omitempty"`
	ConfidentialityLevel int    `json:"confidentialityLevel,omitempty" yaml:"confidentialityLevel,omitempty"`

	// Set when converted together with the term's relationships.
	Glossary   *ElementStub   `json:"glossary,omitempty" yaml:"glossary,omitempty"`
	Categories []*ElementStub `json:"categories,omitempty" yaml:"categories,omitempty"`

	AdditionalProperties map[string]string `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	ExtendedProperties   map[string]any    `json:"extendedProperties,omitempty" yaml:"extendedProperties,omitempty"`
}

func (t *GlossaryTerm) BeanClass() BeanClass { return ClassGlossaryTerm }

type GlossaryCategory struct {
	Header        *ElementHeader `json:"header" yaml:"header"`
	QualifiedName string         `json:"qualifiedName" yaml:"qualifiedName"`
	Name          string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	// Set from the SubjectArea classification.
	SubjectAreaName string `json:"subjectArea,omitempty" yaml:"subjectArea,omitempty"`

	// Set when converted together with the category's relationships.
	Glossary       *ElementStub `json:"glossary,omitempty" yaml:"glossary,omitempty"`
	ParentCategory *ElementStub `json:"parentCategory,omitempty" yaml:"parentCategory,omitempty"`

	AdditionalProperties map[string]string `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	ExtendedProperties   map[string]any    `json:"extendedProperties,omitempty" yaml:"extendedProperties,omitempty"`
}

func (c *GlossaryCategory) BeanClass() BeanClass { return ClassGlossaryCategory }

// Projects

type ProjectNodeType string

const (
	NodeProject         ProjectNodeType = "Project"
	NodeCampaign        ProjectNodeType = "Campaign"
	NodeTask            ProjectNodeType = "Task"
	NodePersonalProject ProjectNodeType = "PersonalProject"
	NodeStudyProject    ProjectNodeType = "StudyProject"
)

type Project struct {
	Header         *ElementHeader  `json:"header" yaml:"header"`
	NodeType       ProjectNodeType `json:"nodeType" yaml:"nodeType"`
	QualifiedName  string          `json:"qualifiedName" yaml:"qualifiedName"`
	Name           string          `json:"name,omitempty" yaml:"name,omitempty"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	Identifier     string          `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	ProjectStatus  string          `json:"projectStatus,omitempty" yaml:"projectStatus,omitempty"`
	Priority       int             `json:"priority,omitempty" yaml:"priority,omitempty"`
	StartDate      *time.Time      `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	PlannedEndDate *time.Time      `json:"plannedEndDate,omitempty" yaml:"plannedEndDate,omitempty"`

	AdditionalProperties map[string]string `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	ExtendedProperties   map[string]any    `json:"extendedProperties,omitempty" yaml:"extendedProperties,omitempty"`
}

func (p *Project) BeanClass() BeanClass { return ClassProject }

// Lines

// Line is a relationship between two elements, e.g. a term-to-term
// relationship or the anchoring of a term in its glossary.
type Line struct {
	Header      *ElementHeader `json:"header" yaml:"header"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Expression  string         `json:"expression,omitempty" yaml:"expression,omitempty"`
	Steward     string         `json:"steward,omitempty" yaml:"steward,omitempty"`
	Source      string         `json:"source,omitempty" yaml:"source,omitempty"`
	Status      string         `json:"status,omitempty" yaml:"status,omitempty"`
	Confidence  int            `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty" yaml:"effectiveFrom,omitempty"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty" yaml:"effectiveTo,omitempty"`

	End1 *ElementStub `json:"end1" yaml:"end1"`
	End2 *ElementStub `json:"end2" yaml:"end2"`

	AdditionalProperties map[string]string `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	ExtendedProperties   map[string]any    `json:"extendedProperties,omitempty" yaml:"extendedProperties,omitempty"`
}

func (l *Line) BeanClass() BeanClass { return ClassLine }

// Schemas

// SchemaType describes the structure of a data asset. Linked types
// (external, map-from, map-to) and the option list are converted
// recursively and embedded.
type SchemaType struct {
	Header           *ElementHeader `json:"header" yaml:"header"`
	QualifiedName    string         `json:"qualifiedName" yaml:"qualifiedName"`
	DisplayName      string         `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description      string         `json:"description,omitempty" yaml:"description,omitempty"`
	VersionNumber    string         `json:"versionNumber,omitempty" yaml:"versionNumber,omitempty"`
	Author           string         `json:"author,omitempty" yaml:"author,omitempty"`
	Usage            string         `json:"usage,omitempty" yaml:"usage,omitempty"`
	EncodingStandard string         `json:"encodingStandard,omitempty" yaml:"encodingStandard,omitempty"`
	Namespace        string         `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	IsDeprecated     bool           `json:"isDeprecated,omitempty" yaml:"isDeprecated,omitempty"`
	DataType         string         `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	DefaultValue     string         `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`

	AttributeCount    int    `json:"attributeCount,omitempty" yaml:"attributeCount,omitempty"`
	ValidValueSetGUID string `json:"validValueSetGUID,omitempty" yaml:"validValueSetGUID,omitempty"`

	ExternalSchemaType *SchemaType   `json:"externalSchemaType,omitempty" yaml:"externalSchemaType,omitempty"`
	MapFromElement     *SchemaType   `json:"mapFromElement,omitempty" yaml:"mapFromElement,omitempty"`
	MapToElement       *SchemaType   `json:"mapToElement,omitempty" yaml:"mapToElement,omitempty"`
	SchemaOptions      []*SchemaType `json:"schemaOptions,omitempty" yaml:"schemaOptions,omitempty"`

	// GUIDs of the linked types. Only set when the caller requested them,
	// so it can decide between embedding and referencing.
	ExternalSchemaTypeGUID string `json:"externalSchemaTypeGUID,omitempty" yaml:"externalSchemaTypeGUID,omitempty"`
	MapFromElementGUID     string `json:"mapFromElementGUID,omitempty" yaml:"mapFromElementGUID,omitempty"`
	MapToElementGUID       string `json:"mapToElementGUID,omitempty" yaml:"mapToElementGUID,omitempty"`

	AdditionalProperties map[string]string `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	ExtendedProperties   map[string]any    `json:"extendedProperties,omitempty" yaml:"extendedProperties,omitempty"`
}

func (s *SchemaType) BeanClass() BeanClass { return ClassSchemaType }
