package props

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct exports b as a google.protobuf.Struct. Dates become RFC 3339
// strings and integers become numbers; enums are exported by symbolic name.
func ToStruct(b *Bag) (*structpb.Struct, error) {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, b.Len())}
	for _, name := range b.Names() {
		v, _ := b.Value(name)
		pv, err := toStructValue(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		s.Fields[name] = pv
	}
	return s, nil
}

func toStructValue(v Value) (*structpb.Value, error) {
	switch v.kind {
	case KindString, KindEnum:
		return structpb.NewStringValue(v.s), nil
	case KindInt, KindLong:
		return structpb.NewNumberValue(float64(v.i)), nil
	case KindBoolean:
		return structpb.NewBoolValue(v.b), nil
	case KindDate:
		return structpb.NewStringValue(v.t.Format(time.RFC3339Nano)), nil
	case KindStringList:
		vals := make([]*structpb.Value, len(v.list))
		for i, s := range v.list {
			vals[i] = structpb.NewStringValue(s)
		}
		return structpb.NewListValue(&structpb.ListValue{Values: vals}), nil
	case KindStringMap:
		fields := make(map[string]*structpb.Value, len(v.strMap))
		for k, s := range v.strMap {
			fields[k] = structpb.NewStringValue(s)
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	case KindMap:
		nested, err := ToStruct(v.nested)
		if err != nil {
			return nil, err
		}
		return structpb.NewStructValue(nested), nil
	}
	return nil, fmt.Errorf("invalid property value")
}

// FromStruct is the inverse of ToStruct as far as JSON allows. Integral
// numbers become Int or Long values, lists of strings become StringList
// values, and objects become StringMap values if all their values are
// strings and nested Map values otherwise. Dates and enums come back as
// strings. Names are added in sorted order. Nulls, fractional numbers and
// lists holding anything but strings are rejected.
func FromStruct(s *structpb.Struct) (*Bag, error) {
	b := NewBag()
	fields := s.GetFields()
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		v, err := fromStructValue(fields[name])
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		b.Set(name, v)
	}
	return b, nil
}

func fromStructValue(pv *structpb.Value) (Value, error) {
	switch x := pv.GetKind().(type) {
	case *structpb.Value_StringValue:
		return StringValue(x.StringValue), nil
	case *structpb.Value_BoolValue:
		return BoolValue(x.BoolValue), nil
	case *structpb.Value_NumberValue:
		return integralValue(x.NumberValue)
	case *structpb.Value_ListValue:
		vals := x.ListValue.GetValues()
		list := make([]string, len(vals))
		for i, e := range vals {
			sv, ok := e.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return Value{}, fmt.Errorf("list element #%d is not a string", i)
			}
			list[i] = sv.StringValue
		}
		return StringListValue(list), nil
	case *structpb.Value_StructValue:
		fields := x.StructValue.GetFields()
		strMap := make(map[string]string, len(fields))
		for k, e := range fields {
			sv, ok := e.GetKind().(*structpb.Value_StringValue)
			if !ok {
				nested, err := FromStruct(x.StructValue)
				if err != nil {
					return Value{}, err
				}
				return MapValue(nested), nil
			}
			strMap[k] = sv.StringValue
		}
		return StringMapValue(strMap), nil
	}
	return Value{}, fmt.Errorf("unsupported JSON value %v", pv)
}

// integralValue converts a JSON number to an Int or Long value.
func integralValue(f float64) (Value, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= math.MaxInt64 {
		return Value{}, fmt.Errorf("number %v is not an integer", f)
	}
	return IntValue(int(int64(f))), nil
}
