package convert

import (
	"time"

	"github.com/dnswlt/mdcat/internal/props"
)

// reader consumes typed fields from a private copy of a property bag.
// The first type mismatch is remembered; subsequent reads return defaults.
type reader struct {
	bag     *props.Bag
	aliases map[string][]string
	err     error
}

func (c *call) reader(bag *props.Bag) *reader {
	b := bag.Clone()
	if b == nil {
		b = props.NewBag()
	}
	return &reader{bag: b, aliases: c.aliases}
}

// take reads and consumes f.
func take[T any](r *reader, f props.Field[T]) T {
	if r.err != nil {
		return f.Default
	}
	v, err := props.Remove(r.bag, f.WithAliases(r.aliases[f.Key]...))
	if err != nil {
		r.err = err
	}
	return v
}

// peek reads f without consuming it.
func peek[T any](r *reader, f props.Field[T]) T {
	if r.err != nil {
		return f.Default
	}
	v, err := props.Get(r.bag, f.WithAliases(r.aliases[f.Key]...))
	if err != nil {
		r.err = err
	}
	return v
}

// extended returns the properties not consumed so far. Call it only after
// all recognized fields have been taken.
func (r *reader) extended() map[string]any {
	return r.bag.AsMap()
}

// classificationValue reads f from a classification's properties. A nil bag
// yields f's default.
func classificationValue[T any](r *reader, bag *props.Bag, f props.Field[T]) T {
	if r.err != nil || bag == nil {
		return f.Default
	}
	v, err := props.Get(bag, f.WithAliases(r.aliases[f.Key]...))
	if err != nil {
		r.err = err
	}
	return v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
