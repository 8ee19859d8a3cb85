package props

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
)

// ErrTypeMismatch is matched (via errors.Is) by all TypeMismatchErrors.
var ErrTypeMismatch = errors.New("property type mismatch")

// TypeMismatchError is returned when a bag holds a value whose kind cannot
// be read as the kind requested by a field descriptor.
type TypeMismatchError struct {
	Name string // The property name under which the value was found.
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("property %q: cannot read %s value as %s", e.Name, e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// Descriptor is the untyped part of a Field: its registry key, canonical
// property name, kind, and legacy alias names in lookup order.
type Descriptor struct {
	Key     string
	Name    string
	Kind    Kind
	Aliases []string
}

// Names returns the canonical name followed by all aliases.
func (d Descriptor) Names() []string {
	return append([]string{d.Name}, d.Aliases...)
}

// Field describes how to read one named property of type T from a Bag.
// Fields are immutable values; the With* methods return modified copies.
type Field[T any] struct {
	Descriptor
	// Default is returned when none of the field's names is present.
	Default T

	decode func(Value) (T, bool)
}

// WithAliases returns a copy of f that additionally falls back to the given
// alias names, after f's own aliases.
func (f Field[T]) WithAliases(aliases ...string) Field[T] {
	if len(aliases) == 0 {
		return f
	}
	f.Aliases = slices.Concat(f.Aliases, aliases)
	return f
}

// WithKey returns a copy of f registered under a different key. Needed when
// several fields share a canonical name but differ in their aliases.
func (f Field[T]) WithKey(key string) Field[T] {
	f.Key = key
	return f
}

// WithDefault returns a copy of f with the given default value.
func (f Field[T]) WithDefault(def T) Field[T] {
	f.Default = def
	return f
}

func newField[T any](kind Kind, name string, aliases []string, decode func(Value) (T, bool)) Field[T] {
	return Field[T]{
		Descriptor: Descriptor{
			Key:     name,
			Name:    name,
			Kind:    kind,
			Aliases: slices.Clone(aliases),
		},
		decode: decode,
	}
}

// StringField describes a string property. Absent: "".
func StringField(name string, aliases ...string) Field[string] {
	return newField(KindString, name, aliases, func(v Value) (string, bool) {
		return v.s, v.kind == KindString
	})
}

// EnumField describes an enumeration property, read as its symbolic name.
// Plain string values are accepted as well. Absent: "".
func EnumField(name string, aliases ...string) Field[string] {
	return newField(KindEnum, name, aliases, func(v Value) (string, bool) {
		return v.s, v.kind == KindEnum || v.kind == KindString
	})
}

// IntField describes an integer property. Absent: 0.
func IntField(name string, aliases ...string) Field[int] {
	return newField(KindInt, name, aliases, func(v Value) (int, bool) {
		return int(v.i), v.kind == KindInt
	})
}

// LongField describes a long property. Int values are widened. Absent: 0.
func LongField(name string, aliases ...string) Field[int64] {
	return newField(KindLong, name, aliases, func(v Value) (int64, bool) {
		return v.i, v.kind == KindLong || v.kind == KindInt
	})
}

// BoolField describes a boolean property. Absent: false.
func BoolField(name string, aliases ...string) Field[bool] {
	return newField(KindBoolean, name, aliases, func(v Value) (bool, bool) {
		return v.b, v.kind == KindBoolean
	})
}

// DateField describes a date property. Long values are interpreted as
// milliseconds since the Unix epoch. Absent: nil.
func DateField(name string, aliases ...string) Field[*time.Time] {
	return newField(KindDate, name, aliases, func(v Value) (*time.Time, bool) {
		switch v.kind {
		case KindDate:
			t := v.t
			return &t, true
		case KindLong:
			t := time.UnixMilli(v.i).UTC()
			return &t, true
		}
		return nil, false
	})
}

// StringListField describes a list-of-strings property. Absent: nil.
func StringListField(name string, aliases ...string) Field[[]string] {
	return newField(KindStringList, name, aliases, func(v Value) ([]string, bool) {
		if v.kind != KindStringList {
			return nil, false
		}
		return slices.Clone(v.list), true
	})
}

// StringMapField describes a string-to-string map property. Absent: nil.
func StringMapField(name string, aliases ...string) Field[map[string]string] {
	return newField(KindStringMap, name, aliases, func(v Value) (map[string]string, bool) {
		if v.kind != KindStringMap {
			return nil, false
		}
		m := maps.Clone(v.strMap)
		if m == nil {
			m = map[string]string{}
		}
		return m, true
	})
}

// MapField describes a nested property map. Absent: nil.
func MapField(name string, aliases ...string) Field[*Bag] {
	return newField(KindMap, name, aliases, func(v Value) (*Bag, bool) {
		if v.kind != KindMap {
			return nil, false
		}
		if v.nested == nil {
			return NewBag(), true
		}
		return v.nested.Clone(), true
	})
}

// Extract reads field f from b. The canonical name is tried first, then each
// alias in order; the first name present wins. If consume is true, the
// winning property is removed from b.
//
// Absence is not an error: Extract returns f.Default and found=false.
// A present value of an incompatible kind yields a *TypeMismatchError and
// leaves b unchanged.
func Extract[T any](b *Bag, f Field[T], consume bool) (value T, found bool, err error) {
	if f.decode == nil {
		return f.Default, false, fmt.Errorf("field %q has no decoder", f.Key)
	}
	for _, name := range f.Names() {
		v, ok := b.Value(name)
		if !ok {
			continue
		}
		out, ok := f.decode(v)
		if !ok {
			return f.Default, false, &TypeMismatchError{Name: name, Want: f.Kind, Got: v.Kind()}
		}
		if consume {
			b.Delete(name)
		}
		return out, true, nil
	}
	return f.Default, false, nil
}

// Get reads f from b without modifying b.
func Get[T any](b *Bag, f Field[T]) (T, error) {
	v, _, err := Extract(b, f, false)
	return v, err
}

// Remove reads f from b and deletes the property that supplied the value.
func Remove[T any](b *Bag, f Field[T]) (T, error) {
	v, _, err := Extract(b, f, true)
	return v, err
}

// ExtractDescriptor is the untyped counterpart of Extract, for callers that
// only hold a Descriptor (e.g. one obtained from Lookup). The returned value
// has the Go type of the corresponding typed Field.
func ExtractDescriptor(b *Bag, d Descriptor, consume bool) (any, bool, error) {
	switch d.Kind {
	case KindString:
		return extractAny(b, StringField(d.Name, d.Aliases...), consume)
	case KindEnum:
		return extractAny(b, EnumField(d.Name, d.Aliases...), consume)
	case KindInt:
		return extractAny(b, IntField(d.Name, d.Aliases...), consume)
	case KindLong:
		return extractAny(b, LongField(d.Name, d.Aliases...), consume)
	case KindBoolean:
		return extractAny(b, BoolField(d.Name, d.Aliases...), consume)
	case KindDate:
		return extractAny(b, DateField(d.Name, d.Aliases...), consume)
	case KindStringList:
		return extractAny(b, StringListField(d.Name, d.Aliases...), consume)
	case KindStringMap:
		return extractAny(b, StringMapField(d.Name, d.Aliases...), consume)
	case KindMap:
		return extractAny(b, MapField(d.Name, d.Aliases...), consume)
	}
	return nil, false, fmt.Errorf("descriptor %q has invalid kind %v", d.Key, d.Kind)
}

func extractAny[T any](b *Bag, f Field[T], consume bool) (any, bool, error) {
	v, found, err := Extract(b, f, consume)
	return v, found, err
}

// RemoveAll deletes the canonical names and aliases of all given
// descriptors from b, regardless of their values.
func RemoveAll(b *Bag, ds ...Descriptor) {
	for _, d := range ds {
		for _, name := range d.Names() {
			b.Delete(name)
		}
	}
}
