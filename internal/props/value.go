// Package props implements property bags: the dynamically keyed attribute
// maps attached to catalog elements, relationships and classifications.
//
// A Bag maps property names to typed Values. Typed reads go through Field
// descriptors (see access.go and fields.go), which know the canonical
// property name, any legacy aliases, and the neutral value returned when a
// property is absent.
package props

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"
)

// Kind identifies the type of value held by a Value.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindLong
	KindBoolean
	KindDate
	KindStringList
	KindStringMap
	KindMap
	KindEnum
)

var kindNames = map[Kind]string{
	KindString:     "string",
	KindInt:        "int",
	KindLong:       "long",
	KindBoolean:    "boolean",
	KindDate:       "date",
	KindStringList: "stringList",
	KindStringMap:  "stringMap",
	KindMap:        "map",
	KindEnum:       "enum",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the Kind with the given name, as used in record files
// (e.g. "stringList").
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Value is a tagged union holding exactly one typed property value.
// The zero Value is invalid and is never stored in a Bag.
type Value struct {
	kind   Kind
	s      string // KindString, KindEnum
	i      int64  // KindInt, KindLong
	b      bool
	t      time.Time
	list   []string
	strMap map[string]string
	nested *Bag
}

func StringValue(s string) Value { return Value{kind: KindString, s: s} }
// IntValue holds i as an Int if it fits into 32 bits, and as a Long
// otherwise.
func IntValue(i int) Value {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return LongValue(int64(i))
	}
	return Value{kind: KindInt, i: int64(i)}
}

func LongValue(i int64) Value { return Value{kind: KindLong, i: i} }
func BoolValue(b bool) Value  { return Value{kind: KindBoolean, b: b} }
func DateValue(t time.Time) Value {
	return Value{kind: KindDate, t: t}
}
func StringListValue(xs []string) Value {
	return Value{kind: KindStringList, list: slices.Clone(xs)}
}
func StringMapValue(m map[string]string) Value {
	return Value{kind: KindStringMap, strMap: maps.Clone(m)}
}
func MapValue(b *Bag) Value {
	nested := b.Clone()
	if nested == nil {
		nested = NewBag()
	}
	return Value{kind: KindMap, nested: nested}
}

// EnumValue holds the symbolic name of an enumeration constant.
func EnumValue(symbolicName string) Value { return Value{kind: KindEnum, s: symbolicName} }

func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != 0 }

// Interface returns v in weakly typed form: string, int32, int64, bool,
// time.Time, []string, map[string]string, or map[string]any for nested maps.
// Enum values are returned as their symbolic name.
func (v Value) Interface() any {
	switch v.kind {
	case KindString, KindEnum:
		return v.s
	case KindInt:
		return int32(v.i)
	case KindLong:
		return v.i
	case KindBoolean:
		return v.b
	case KindDate:
		return v.t
	case KindStringList:
		return slices.Clone(v.list)
	case KindStringMap:
		return maps.Clone(v.strMap)
	case KindMap:
		m := v.nested.AsMap()
		if m == nil {
			m = map[string]any{}
		}
		return m
	}
	return nil
}

// ValueOf is the inverse of Interface. It returns false for Go types that
// have no property kind. Plain ints become Int values if they fit into 32
// bits and Long values otherwise.
//
// Values decoded by encoding/json are accepted too: integral float64s are
// treated like ints and []any holding only strings like []string.
func ValueOf(x any) (Value, bool) {
	switch y := x.(type) {
	case string:
		return StringValue(y), true
	case int32:
		return IntValue(int(y)), true
	case int:
		return IntValue(y), true
	case float64:
		v, err := integralValue(y)
		return v, err == nil
	case []any:
		list := make([]string, len(y))
		for i, e := range y {
			s, ok := e.(string)
			if !ok {
				return Value{}, false
			}
			list[i] = s
		}
		return StringListValue(list), true
	case int64:
		return LongValue(y), true
	case bool:
		return BoolValue(y), true
	case time.Time:
		return DateValue(y), true
	case []string:
		return StringListValue(y), true
	case map[string]string:
		return StringMapValue(y), true
	case map[string]any:
		nested := NewBag()
		for _, k := range slices.Sorted(maps.Keys(y)) {
			v, ok := ValueOf(y[k])
			if !ok {
				return Value{}, false
			}
			nested.Set(k, v)
		}
		return MapValue(nested), true
	}
	return Value{}, false
}

// Equal reports whether v and w hold the same kind and value.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindString, KindEnum:
		return v.s == w.s
	case KindInt, KindLong:
		return v.i == w.i
	case KindBoolean:
		return v.b == w.b
	case KindDate:
		return v.t.Equal(w.t)
	case KindStringList:
		return slices.Equal(v.list, w.list)
	case KindStringMap:
		return maps.Equal(v.strMap, w.strMap)
	case KindMap:
		return v.nested.Equal(w.nested)
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindEnum:
		return v.s
	case KindDate:
		return v.t.Format(time.RFC3339Nano)
	case KindMap:
		return v.nested.String()
	case 0:
		return "<invalid>"
	}
	return fmt.Sprint(v.Interface())
}

func (v Value) clone() Value {
	switch v.kind {
	case KindStringList:
		v.list = slices.Clone(v.list)
	case KindStringMap:
		v.strMap = maps.Clone(v.strMap)
	case KindMap:
		v.nested = v.nested.Clone()
	}
	return v
}
