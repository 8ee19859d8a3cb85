package api

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// The apiVersion expected in record files.
	APIVersion = "mdcat/v1"

	// Record kinds, as used in YAML (e.g, "kind: Element")
	YAMLKindElement      = "Element"
	YAMLKindRelationship = "Relationship"
)

var (
	// GUIDs are opaque, but restricted to characters that are safe in URL paths.
	// Must start with an alphanumeric character.
	validGUIDRE = regexp.MustCompile("^[A-Za-z0-9][A-Za-z0-9._:-]*$")

	// Type names are CamelCase identifiers, e.g. GlossaryTerm.
	validTypeNameRE = regexp.MustCompile("^[A-Z][A-Za-z0-9_]*$")
)

func IsValidGUID(s string) bool {
	return len(s) > 0 && len(s) <= 128 && validGUIDRE.MatchString(s)
}

func IsValidTypeName(s string) bool {
	return len(s) > 0 && len(s) <= 128 && validTypeNameRE.MatchString(s)
}

// ParseElementRef parses element references in the short form "<type>:<guid>"
// or "<guid>". Since GUIDs may themselves contain colons, the type prefix is
// only recognized if it is a valid type name.
func ParseElementRef(s string) (ElementRef, error) {
	s = strings.TrimSpace(s)
	if typ, guid, found := strings.Cut(s, ":"); found && IsValidTypeName(typ) {
		if !IsValidGUID(guid) {
			return ElementRef{}, fmt.Errorf("invalid GUID %q", guid)
		}
		return ElementRef{GUID: guid, Type: typ}, nil
	}
	if !IsValidGUID(s) {
		return ElementRef{}, fmt.Errorf("invalid GUID %q", s)
	}
	return ElementRef{GUID: s}, nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for ElementRef.
// It supports both the short string form and the record-style map format.
func (r *ElementRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	// Case 1: The value is a simple string, e.g., "GlossaryTerm:term-1"
	case yaml.ScalarNode:
		ref, err := ParseElementRef(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*r = ref
		return nil

	// Case 2: The value is a map, e.g., { guid: "...", type: "..." }
	case yaml.MappingNode:
		var aux struct {
			GUID       string `yaml:"guid"`
			Type       string `yaml:"type"`
			UniqueName string `yaml:"uniqueName"`
		}
		if err := value.Decode(&aux); err != nil {
			return err
		}
		if !IsValidGUID(aux.GUID) {
			return fmt.Errorf("line %d: invalid GUID %q", value.Line, aux.GUID)
		}
		*r = ElementRef(aux)
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into ElementRef", value.Tag)
}
