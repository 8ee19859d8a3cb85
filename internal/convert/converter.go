// Package convert hydrates strongly typed beans (package catalog) from raw
// repository records (package api).
//
// A Converter is configured for one bean class and declares the request
// variants it supports. Requests of any other variant fail with an
// ErrUnimplementedVariant error that names the bean class, the variant,
// the converter and the caller. Converters hold no mutable state and may be
// used concurrently.
//
// Converters never drain the caller's records: each conversion reads from a
// private clone of the record's property bag. Recognized properties are
// consumed from the clone, and whatever remains ends up in the bean's
// ExtendedProperties.
package convert

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
)

// BeanConverter is the capability interface of converters producing beans of
// type T. Each From* method serves one request variant.
type BeanConverter[T catalog.Bean] interface {
	FromElement(class catalog.BeanClass, e *api.Element, caller string) (T, error)
	FromRelatedElement(class catalog.BeanClass, r *api.RelatedElement, caller string) (T, error)
	FromElementAndRelationship(class catalog.BeanClass, e *api.Element, rel *api.Relationship, caller string) (T, error)
	FromComplex(class catalog.BeanClass, e *api.Element, rels []*api.Relationship, caller string) (T, error)
	FromCompositeWithSupplementary(class catalog.BeanClass, e *api.Element, supplementary []*api.Element, rels []*api.Relationship, caller string) (T, error)
	FromRelationshipOnly(class catalog.BeanClass, rel *api.Relationship, caller string) (T, error)
	FromSchemaType(class catalog.BeanClass, req *SchemaTypeRequest, caller string) (T, error)

	// Convert dispatches req to the handler for its variant.
	Convert(class catalog.BeanClass, req Request, caller string) (T, error)
	// Supports reports whether the converter handles variant v.
	Supports(v Variant) bool
}

// handler fills bean from req. req is guaranteed to be of the variant the
// handler was registered for, with its primary record present.
type handler[T catalog.Bean] func(c *call, bean T, req Request) error

// call carries the per-conversion configuration passed to handlers.
type call struct {
	aliases map[string][]string
}

type options struct {
	serviceName string
	aliases     map[string][]string
}

// Option configures a Converter.
type Option func(*options)

// WithServiceName sets the name of the service the converter works for.
// It is informational only.
func WithServiceName(name string) Option {
	return func(o *options) {
		o.serviceName = name
	}
}

// WithFieldAliases adds alias property names per field key (see
// props.Lookup). They are tried after a field's built-in aliases.
func WithFieldAliases(aliases map[string][]string) Option {
	return func(o *options) {
		if o.aliases == nil {
			o.aliases = make(map[string][]string)
		}
		for k, v := range aliases {
			o.aliases[k] = append(o.aliases[k], v...)
		}
	}
}

// Converter converts requests into beans of type T.
// It is immutable after construction.
type Converter[T catalog.Bean] struct {
	serviceName string
	class       catalog.BeanClass
	name        string
	handlers    map[Variant]handler[T]
	aliases     map[string][]string
}

var _ BeanConverter[*catalog.Glossary] = (*Converter[*catalog.Glossary])(nil)

func newConverter[T catalog.Bean](class catalog.BeanClass, name string, handlers map[Variant]handler[T], opts ...Option) *Converter[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	aliases := make(map[string][]string, len(o.aliases))
	for k, v := range o.aliases {
		aliases[k] = slices.Clone(v)
	}
	return &Converter[T]{
		serviceName: o.serviceName,
		class:       class,
		name:        name,
		handlers:    maps.Clone(handlers),
		aliases:     aliases,
	}
}

// NewBase returns a converter for class that supports no variants. Every
// conversion it is asked for fails with ErrUnimplementedVariant (or
// ErrMissingSourceRecord, for absent input).
func NewBase[T catalog.Bean](class catalog.BeanClass, name string, opts ...Option) *Converter[T] {
	return newConverter[T](class, name, nil, opts...)
}

func (cv *Converter[T]) Name() string                 { return cv.name }
func (cv *Converter[T]) ServiceName() string          { return cv.serviceName }
func (cv *Converter[T]) BeanClass() catalog.BeanClass { return cv.class }

func (cv *Converter[T]) Supports(v Variant) bool {
	_, ok := cv.handlers[v]
	return ok
}

// Variants returns the supported variants in declaration order.
func (cv *Converter[T]) Variants() []Variant {
	var vs []Variant
	for _, v := range Variants() {
		if cv.Supports(v) {
			vs = append(vs, v)
		}
	}
	return vs
}

func (cv *Converter[T]) Convert(class catalog.BeanClass, req Request, caller string) (T, error) {
	var zero T
	if req == nil {
		return zero, annotate(missingRecord("no request"), class, "Convert", "", cv.name, caller)
	}
	variant := req.Variant()
	method := variant.Method()
	fail := func(err error) (T, error) {
		return zero, annotate(err, class, method, variant, cv.name, caller)
	}

	if !req.hasPrimary() {
		return fail(missingRecord(fmt.Sprintf("%s requires a primary source record", variant)))
	}
	if class != cv.class {
		return fail(&Error{
			Kind:   KindUnexpectedBeanClass,
			Detail: fmt.Sprintf("converter produces %s", cv.class),
		})
	}
	h, ok := cv.handlers[variant]
	if !ok {
		return fail(&Error{Kind: KindUnimplementedVariant})
	}
	bean, err := catalog.NewBean(class)
	if err != nil {
		return fail(&Error{Kind: KindInvalidBeanClass, Cause: err})
	}
	typed, ok := bean.(T)
	if !ok {
		return fail(&Error{
			Kind:   KindInvalidBeanClass,
			Detail: fmt.Sprintf("factory for %s returned %T, want %T", class, bean, zero),
		})
	}
	if err := h(&call{aliases: cv.aliases}, typed, req); err != nil {
		return fail(err)
	}
	return typed, nil
}

func (cv *Converter[T]) FromElement(class catalog.BeanClass, e *api.Element, caller string) (T, error) {
	return cv.Convert(class, ElementRequest{Element: e}, caller)
}

func (cv *Converter[T]) FromRelatedElement(class catalog.BeanClass, r *api.RelatedElement, caller string) (T, error) {
	return cv.Convert(class, RelatedElementRequest{Related: r}, caller)
}

func (cv *Converter[T]) FromElementAndRelationship(class catalog.BeanClass, e *api.Element, rel *api.Relationship, caller string) (T, error) {
	return cv.Convert(class, ElementAndRelationshipRequest{Element: e, Relationship: rel}, caller)
}

func (cv *Converter[T]) FromComplex(class catalog.BeanClass, e *api.Element, rels []*api.Relationship, caller string) (T, error) {
	return cv.Convert(class, ComplexRequest{Element: e, Relationships: rels}, caller)
}

func (cv *Converter[T]) FromCompositeWithSupplementary(class catalog.BeanClass, e *api.Element, supplementary []*api.Element, rels []*api.Relationship, caller string) (T, error) {
	return cv.Convert(class, CompositeRequest{Element: e, Supplementary: supplementary, Relationships: rels}, caller)
}

func (cv *Converter[T]) FromRelationshipOnly(class catalog.BeanClass, rel *api.Relationship, caller string) (T, error) {
	return cv.Convert(class, RelationshipRequest{Relationship: rel}, caller)
}

func (cv *Converter[T]) FromSchemaType(class catalog.BeanClass, req *SchemaTypeRequest, caller string) (T, error) {
	if req == nil {
		return cv.Convert(class, SchemaTypeRequest{}, caller)
	}
	return cv.Convert(class, *req, caller)
}
