package api

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	kindFactories = map[string]func() Record{
		YAMLKindElement:      func() Record { return &Element{} },
		YAMLKindRelationship: func() Record { return &Relationship{} },
	}
)

// FindKindInNode is a helper to extract the 'kind' value from a yaml.Node
func FindKindInNode(doc *yaml.Node) (string, error) {
	// The top-level node is a DocumentNode, its content is a MappingNode
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return "", errors.New("expected a YAML document with a top-level map")
	}

	nodes := doc.Content[0].Content
	for i := 0; i < len(nodes); i += 2 {
		keyNode := nodes[i]
		if keyNode.Value == "kind" {
			valueNode := nodes[i+1]
			if valueNode.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("'kind' field is not a string (type: %v)", valueNode.Tag)
			}
			return valueNode.Value, nil
		}
	}
	return "", errors.New("no 'kind' field found")
}

// NewRecordFromNode decodes a single YAML document into the record type named
// by its 'kind' field. In strict mode, unknown fields are rejected.
func NewRecordFromNode(node *yaml.Node, strict bool) (Record, error) {

	if len(node.Content) == 0 {
		return nil, errors.New("empty yaml document")
	}

	kind, err := FindKindInNode(node)
	if err != nil {
		return nil, fmt.Errorf("error in document: %w", err)
	}

	factory, ok := kindFactories[kind]
	if !ok {
		return nil, fmt.Errorf("invalid kind '%s'", kind)
	}
	record := factory()

	if strict {
		// Re-encode the YAML document to then decode it strictly into the target type.
		// There is no strict mode when decoding from a yaml.Node directly.
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		if err := enc.Encode(node); err != nil {
			return nil, fmt.Errorf("failed to re-encode node: %v", err)
		}
		strictDec := yaml.NewDecoder(&buf)
		strictDec.KnownFields(true)
		if err := strictDec.Decode(record); err != nil {
			return nil, fmt.Errorf("failed to decode node into %s: %v", kind, err)
		}
	} else {
		if err := node.Decode(record); err != nil {
			return nil, fmt.Errorf("failed to decode node into %s: %v", kind, err)
		}
	}
	record.SetSourceInfo(&SourceInfo{
		Node: node,
		Line: node.Line,
	})

	return record, nil
}

func NewRecordFromString(content string) (Record, error) {
	var node yaml.Node
	dec := yaml.NewDecoder(strings.NewReader(content))
	err := dec.Decode(&node)
	if err != nil {
		return nil, fmt.Errorf("failed to decode YAML node: %w", err)
	}
	return NewRecordFromNode(&node, true)
}

// MarshalRecord encodes r as a YAML document, including apiVersion and kind.
func MarshalRecord(r Record) ([]byte, error) {
	switch x := r.(type) {
	case *Element:
		c := *x
		c.APIVersion, c.Kind = APIVersion, YAMLKindElement
		return marshalYAML(&c)
	case *Relationship:
		c := *x
		c.APIVersion, c.Kind = APIVersion, YAMLKindRelationship
		return marshalYAML(&c)
	}
	return nil, fmt.Errorf("unsupported record type %T", r)
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
