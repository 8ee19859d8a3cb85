package repo

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/dnswlt/mdcat/internal/api"
	"gopkg.in/yaml.v3"
)

// ValueRegexp is a wrapper around regexp.Regexp to allow for custom YAML unmarshaling.
type ValueRegexp regexp.Regexp

// ValueRule defines a validation rule for a string value.
// It can enforce a specific list of values or a set of regular expressions.
type ValueRule struct {
	Values  []string       `yaml:"values"`
	Matches []*ValueRegexp `yaml:"matches"`
}

// ElementRules restricts the elements of one type.
type ElementRules struct {
	Status        *ValueRule `yaml:"status"`
	QualifiedName *ValueRule `yaml:"qualifiedName"`
}

type ValidationRules struct {
	// Allowed element type names.
	ElementTypes *ValueRule `yaml:"elementTypes"`
	// Allowed relationship type names.
	RelationshipTypes *ValueRule `yaml:"relationshipTypes"`
	// Per element type rules, keyed by type name.
	Elements map[string]*ElementRules `yaml:"elements"`
}

// Config holds repository-specific application configuration.
type Config struct {
	Validation *ValidationRules `yaml:"validation"`
}

// Accept checks r against the rules. A nil *ValidationRules accepts everything.
func (v *ValidationRules) Accept(r api.Record) error {
	if v == nil {
		return nil
	}
	switch x := r.(type) {
	case *api.Element:
		if !v.ElementTypes.Accept(x.Type) {
			return fmt.Errorf("invalid element type %q (allowed: %s)", x.Type, v.ElementTypes.Describe())
		}
		rules := v.Elements[x.Type]
		if rules == nil {
			return nil
		}
		if !rules.Status.Accept(x.Status) {
			return fmt.Errorf("invalid status %q for %s (allowed: %s)", x.Status, x.Type, rules.Status.Describe())
		}
		if rules.QualifiedName != nil {
			qn, err := qualifiedName(x)
			if err != nil {
				return err
			}
			if !rules.QualifiedName.Accept(qn) {
				return fmt.Errorf("invalid qualified name %q for %s (allowed: %s)", qn, x.Type, rules.QualifiedName.Describe())
			}
		}
	case *api.Relationship:
		if !v.RelationshipTypes.Accept(x.Type) {
			return fmt.Errorf("invalid relationship type %q (allowed: %s)", x.Type, v.RelationshipTypes.Describe())
		}
	}
	return nil
}

// Describe returns a human-readable description of the allowed values.
func (r *ValueRule) Describe() string {
	if r == nil {
		return "any value"
	}
	if len(r.Values) > 0 {
		return fmt.Sprintf("one of [%s]", strings.Join(r.Values, ", "))
	}
	if len(r.Matches) > 0 {
		patterns := make([]string, len(r.Matches))
		for i, re := range r.Matches {
			patterns[i] = (*regexp.Regexp)(re).String()
		}
		if len(patterns) == 1 {
			return fmt.Sprintf("matching pattern %s", patterns[0])
		}
		return fmt.Sprintf("matching any of patterns [%s]", strings.Join(patterns, ", "))
	}
	return "any value"
}

// Accept checks if a given value is valid according to the rule.
// A nil or empty rule accepts all values.
func (r *ValueRule) Accept(val string) bool {
	if r == nil {
		return true
	}
	if r.Values != nil {
		return slices.Contains(r.Values, val)
	}
	if r.Matches != nil {
		for _, re := range r.Matches {
			if (*regexp.Regexp)(re).MatchString(val) {
				return true
			}
		}
		return false
	}
	return true
}

// UnmarshalYAML compiles the pattern. Patterns must match the whole value.
func (vr *ValueRegexp) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return fmt.Errorf("regexp pattern in validation rule cannot be empty")
	}
	re, err := regexp.Compile("^(?:" + s + ")$")
	if err != nil {
		return fmt.Errorf("failed to compile validation regexp %q: %w", s, err)
	}
	*vr = ValueRegexp(*re)
	return nil
}
