package props

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// In record files every property is written as a single-key mapping that
// names its kind:
//
//	properties:
//	  qualifiedName: {string: "Glossary::Finance"}
//	  createTime:    {date: 2024-01-02T03:04:05Z}
//	  tags:          {stringList: [pii, finance]}
//	  priority:      {int: 3}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Value.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: property value must be a single-key map {<kind>: <value>}", node.Line)
	}
	tag, payload := node.Content[0].Value, node.Content[1]
	kind, ok := ParseKind(tag)
	if !ok {
		return fmt.Errorf("line %d: unknown property kind %q", node.Line, tag)
	}
	scalar := func() (string, error) {
		if payload.Kind != yaml.ScalarNode {
			return "", fmt.Errorf("line %d: %s value must be a scalar", payload.Line, kind)
		}
		return payload.Value, nil
	}

	switch kind {
	case KindString, KindEnum:
		s, err := scalar()
		if err != nil {
			return err
		}
		*v = Value{kind: kind, s: s}
	case KindInt, KindLong:
		s, err := scalar()
		if err != nil {
			return err
		}
		bits := 64
		if kind == KindInt {
			bits = 32
		}
		i, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return fmt.Errorf("line %d: invalid %s value %q: %v", payload.Line, kind, s, err)
		}
		*v = Value{kind: kind, i: i}
	case KindBoolean:
		var b bool
		if err := payload.Decode(&b); err != nil {
			return fmt.Errorf("line %d: invalid boolean value: %v", payload.Line, err)
		}
		*v = BoolValue(b)
	case KindDate:
		s, err := scalar()
		if err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("line %d: invalid date value %q: %v", payload.Line, s, err)
		}
		*v = DateValue(t)
	case KindStringList:
		var xs []string
		if err := payload.Decode(&xs); err != nil {
			return fmt.Errorf("line %d: invalid stringList value: %v", payload.Line, err)
		}
		*v = Value{kind: KindStringList, list: xs}
	case KindStringMap:
		var m map[string]string
		if err := payload.Decode(&m); err != nil {
			return fmt.Errorf("line %d: invalid stringMap value: %v", payload.Line, err)
		}
		if m == nil {
			m = map[string]string{}
		}
		*v = Value{kind: KindStringMap, strMap: m}
	case KindMap:
		nested := NewBag()
		if err := payload.Decode(nested); err != nil {
			return err
		}
		*v = Value{kind: KindMap, nested: nested}
	}
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Value.
func (v Value) MarshalYAML() (any, error) {
	var payload any
	switch v.kind {
	case KindString, KindEnum:
		payload = v.s
	case KindInt, KindLong:
		payload = v.i
	case KindBoolean:
		payload = v.b
	case KindDate:
		payload = v.t.Format(time.RFC3339Nano)
	case KindStringList:
		payload = v.list
	case KindStringMap:
		payload = v.strMap
	case KindMap:
		payload = v.nested
	default:
		return nil, fmt.Errorf("cannot marshal invalid property value")
	}
	return map[string]any{v.kind.String(): payload}, nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Bag.
// Duplicate property names are rejected.
func (b *Bag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: properties must be a map", node.Line)
	}
	*b = Bag{values: make(map[string]Value, len(node.Content)/2)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if b.Has(name) {
			return fmt.Errorf("line %d: duplicate property %q", node.Content[i].Line, name)
		}
		var v Value
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		b.Set(name, v)
	}
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Bag, retaining
// insertion order.
func (b *Bag) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range b.Names() {
		var valueNode yaml.Node
		if err := valueNode.Encode(b.values[name]); err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&valueNode)
	}
	return node, nil
}
