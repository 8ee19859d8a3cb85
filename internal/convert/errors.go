package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
)

// ErrorKind classifies conversion failures.
type ErrorKind int

const (
	// A required element or relationship input was absent.
	KindMissingSourceRecord ErrorKind = iota + 1
	// The converter does not support the requested request shape.
	KindUnimplementedVariant
	// The converter was asked for a bean class it was not configured for.
	KindUnexpectedBeanClass
	// The bean could not be constructed.
	KindInvalidBeanClass
	// A classification failed a structural check.
	KindMalformedClassification
	// An element or relationship failed a structural check.
	KindMalformedElement
	// A property held a value of the wrong kind.
	KindPropertyType
)

var (
	ErrMissingSourceRecord     = errors.New("missing source record")
	ErrUnimplementedVariant    = errors.New("unimplemented conversion variant")
	ErrUnexpectedBeanClass     = errors.New("unexpected bean class")
	ErrInvalidBeanClass        = errors.New("invalid bean class")
	ErrMalformedClassification = errors.New("malformed classification")
	ErrMalformedElement        = errors.New("malformed element")
	ErrPropertyType            = errors.New("property type mismatch")
)

var kindSentinels = map[ErrorKind]error{
	KindMissingSourceRecord:     ErrMissingSourceRecord,
	KindUnimplementedVariant:    ErrUnimplementedVariant,
	KindUnexpectedBeanClass:     ErrUnexpectedBeanClass,
	KindInvalidBeanClass:        ErrInvalidBeanClass,
	KindMalformedClassification: ErrMalformedClassification,
	KindMalformedElement:        ErrMalformedElement,
	KindPropertyType:            ErrPropertyType,
}

func (k ErrorKind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the structured error returned by all conversion operations.
// errors.Is matches it against the sentinel of its Kind (e.g.
// ErrMissingSourceRecord) as well as against its Cause.
type Error struct {
	Kind ErrorKind

	// BeanClass is the class of bean that was requested.
	BeanClass catalog.BeanClass
	// Method is the conversion method that failed, e.g. "FromElement".
	Method string
	// Variant is the request shape, if known.
	Variant Variant
	// Converter is the name of the converter that handled the request.
	Converter string
	// Caller identifies the calling operation, as supplied by the caller.
	Caller string
	// Record is the string form of the offending record, for malformed input.
	Record string
	// Detail is a human-readable message.
	Detail string

	Cause error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("convert")
	if e.Converter != "" {
		fmt.Fprintf(&sb, " [%s]", e.Converter)
	}
	if e.Method != "" {
		fmt.Fprintf(&sb, " %s(%s)", e.Method, e.BeanClass)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Kind.String())
	if e.Kind == KindUnimplementedVariant {
		fmt.Fprintf(&sb, " %s for bean class %s", e.Variant, e.BeanClass)
	}
	if e.Caller != "" {
		fmt.Fprintf(&sb, " (caller %s)", e.Caller)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Record != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Record)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	return target == kindSentinels[e.Kind]
}

// KindOf returns the ErrorKind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func missingRecord(detail string) *Error {
	return &Error{Kind: KindMissingSourceRecord, Detail: detail}
}

func malformedElement(record fmt.Stringer, detail string) *Error {
	return &Error{Kind: KindMalformedElement, Record: record.String(), Detail: detail}
}

// annotate fills in the call context of err. Errors that are not yet
// conversion errors are classified: property type mismatches become
// KindPropertyType, everything else KindMalformedElement.
func annotate(err error, class catalog.BeanClass, method string, variant Variant, converter, caller string) *Error {
	var ce *Error
	if !errors.As(err, &ce) {
		kind := KindMalformedElement
		if errors.Is(err, props.ErrTypeMismatch) {
			kind = KindPropertyType
		}
		ce = &Error{Kind: kind, Cause: err}
	}
	if ce.BeanClass == "" {
		ce.BeanClass = class
	}
	if ce.Method == "" {
		ce.Method = method
	}
	if ce.Variant == "" {
		ce.Variant = variant
	}
	if ce.Converter == "" {
		ce.Converter = converter
	}
	if ce.Caller == "" {
		ce.Caller = caller
	}
	return ce
}
