package props

import (
	"slices"
	"strings"
)

// Bag is an ordered mapping from property name to Value, holding the raw
// attributes of one element, relationship or classification.
//
// Names are unique within a bag. Insertion order is retained and determines
// iteration order in Names, AsMap-derived output and YAML encoding.
//
// A Bag is not safe for concurrent mutation. Reads through Remove or
// Extract with consume=true drain the bag; callers that need the full
// contents afterwards must work on a Clone.
type Bag struct {
	names  []string
	values map[string]Value
}

// NewBag returns an empty bag.
func NewBag() *Bag {
	return &Bag{values: make(map[string]Value)}
}

// Set stores v under name, replacing any previous value while keeping the
// original position of name. Invalid (zero) values are ignored.
// Set returns b for chaining.
func (b *Bag) Set(name string, v Value) *Bag {
	if !v.IsValid() {
		return b
	}
	if b.values == nil {
		b.values = make(map[string]Value)
	}
	if _, exists := b.values[name]; !exists {
		b.names = append(b.names, name)
	}
	b.values[name] = v.clone()
	return b
}

// Value returns the value stored under name.
func (b *Bag) Value(name string) (Value, bool) {
	if b == nil {
		return Value{}, false
	}
	v, ok := b.values[name]
	return v, ok
}

func (b *Bag) Has(name string) bool {
	_, ok := b.Value(name)
	return ok
}

// Delete removes name from the bag and reports whether it was present.
func (b *Bag) Delete(name string) bool {
	if b == nil {
		return false
	}
	if _, ok := b.values[name]; !ok {
		return false
	}
	delete(b.values, name)
	if i := slices.Index(b.names, name); i >= 0 {
		b.names = slices.Delete(b.names, i, i+1)
	}
	return true
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.names)
}

// Names returns the property names in insertion order.
func (b *Bag) Names() []string {
	if b == nil {
		return nil
	}
	return slices.Clone(b.names)
}

// Clone returns a deep copy of b. Clone of a nil bag is nil.
func (b *Bag) Clone() *Bag {
	if b == nil {
		return nil
	}
	c := &Bag{
		names:  slices.Clone(b.names),
		values: make(map[string]Value, len(b.values)),
	}
	for k, v := range b.values {
		c.values[k] = v.clone()
	}
	return c
}

// AsMap converts all remaining entries into weakly typed form (see
// Value.Interface). It returns nil for an empty or nil bag.
func (b *Bag) AsMap() map[string]any {
	if b.Len() == 0 {
		return nil
	}
	m := make(map[string]any, len(b.names))
	for _, name := range b.names {
		m[name] = b.values[name].Interface()
	}
	return m
}

// Equal reports whether b and o hold the same names, in the same order,
// with equal values. A nil bag equals an empty one.
func (b *Bag) Equal(o *Bag) bool {
	if b.Len() != o.Len() {
		return false
	}
	if b.Len() == 0 {
		return true
	}
	for i, name := range b.names {
		if o.names[i] != name {
			return false
		}
		if !b.values[name].Equal(o.values[name]) {
			return false
		}
	}
	return true
}

func (b *Bag) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, name := range b.Names() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(b.values[name].String())
	}
	sb.WriteString("}")
	return sb.String()
}
