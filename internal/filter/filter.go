// Package filter evaluates CEL expressions against catalog elements.
//
// An expression sees the following variables:
//
//	guid            string
//	type            string
//	version         int
//	status          string
//	properties      map(string, dyn)   the element's properties
//	classifications list(string)       classification names in order
//
// Examples:
//
//	type == "GlossaryTerm" && "SpineObject" in classifications
//	properties.displayName.startsWith("Rev")
//	has(properties.termStatus) && properties.termStatus == "ACTIVE"
package filter

import (
	"fmt"
	"strings"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/google/cel-go/cel"
)

// Program is a compiled filter expression. It is safe for concurrent use.
type Program struct {
	expr string
	prg  cel.Program // nil matches everything
}

var env *cel.Env

func init() {
	var err error
	env, err = cel.NewEnv(
		cel.Variable("guid", cel.StringType),
		cel.Variable("type", cel.StringType),
		cel.Variable("version", cel.IntType),
		cel.Variable("status", cel.StringType),
		cel.Variable("properties", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("classifications", cel.ListType(cel.StringType)),
	)
	if err != nil {
		panic(fmt.Sprintf("filter: cannot create CEL environment: %v", err))
	}
}

// Compile compiles expr. The empty (or all-blank) expression matches all
// elements. Expressions must evaluate to a bool.
func Compile(expr string) (*Program, error) {
	if strings.TrimSpace(expr) == "" {
		return &Program{}, nil
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, iss.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("invalid filter %q: result type is %v, want bool", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

func (p *Program) String() string {
	return p.expr
}

// Match reports whether e satisfies the filter. A nil Program matches
// every element.
func (p *Program) Match(e *api.Element) (bool, error) {
	if p == nil || p.prg == nil {
		return true, nil
	}
	if e == nil {
		return false, nil
	}
	out, _, err := p.prg.Eval(activation(e))
	if err != nil {
		return false, fmt.Errorf("filter %q on element %s: %w", p.expr, e.GUID, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", p.expr, out.Value())
	}
	return b, nil
}

func activation(e *api.Element) map[string]any {
	properties := e.Properties.AsMap()
	if properties == nil {
		properties = map[string]any{}
	}
	classifications := make([]string, 0, len(e.Classifications))
	for _, c := range e.Classifications {
		if c != nil {
			classifications = append(classifications, c.Name)
		}
	}
	return map[string]any{
		"guid":            e.GUID,
		"type":            e.Type,
		"version":         e.Version,
		"status":          e.Status,
		"properties":      properties,
		"classifications": classifications,
	}
}
