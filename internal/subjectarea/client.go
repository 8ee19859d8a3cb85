// Package subjectarea implements the Subject Area operations: reading
// glossaries, terms, categories, projects, lines and schema types as beans,
// and maintaining glossaries.
//
// Operations read raw records from a RecordSource and convert them with the
// converters of package convert. All failures are reported as *apierr.Error.
package subjectarea

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/apierr"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/convert"
	"github.com/dnswlt/mdcat/internal/filter"
	"github.com/dnswlt/mdcat/internal/metrics"
	"github.com/dnswlt/mdcat/internal/repo"
	"github.com/rs/zerolog"
)

// RecordSource provides the raw records. It is implemented by
// *repo.Repository.
type RecordSource interface {
	Element(ctx context.Context, guid string) (*api.Element, error)
	Relationship(ctx context.Context, guid string) (*api.Relationship, error)
	Relationships(ctx context.Context, guid, relType string) ([]*api.Relationship, error)
	RelatedElements(ctx context.Context, guid, relType string) ([]*api.RelatedElement, error)
	FindElements(ctx context.Context, typeName string, f *filter.Program) ([]*api.Element, error)
	InsertElement(ctx context.Context, e *api.Element, userID string) (*api.Element, error)
	UpdateElement(ctx context.Context, e *api.Element, userID string) (*api.Element, error)
	DeleteElement(ctx context.Context, guid string) error
}

var _ RecordSource = (*repo.Repository)(nil)

type Client struct {
	src     RecordSource
	log     zerolog.Logger
	metrics *metrics.Metrics

	glossaries  *convert.Converter[*catalog.Glossary]
	terms       *convert.Converter[*catalog.GlossaryTerm]
	categories  *convert.Converter[*catalog.GlossaryCategory]
	projects    *convert.Converter[*catalog.Project]
	lines       *convert.Converter[*catalog.Line]
	schemaTypes *convert.Converter[*catalog.SchemaType]
	stubs       *convert.Converter[*catalog.ElementStub]
}

type clientOptions struct {
	log         zerolog.Logger
	metrics     *metrics.Metrics
	convertOpts []convert.Option
}

type Option func(*clientOptions)

func WithLogger(l zerolog.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithConverterOptions configures all converters used by the client.
func WithConverterOptions(opts ...convert.Option) Option {
	return func(o *clientOptions) { o.convertOpts = append(o.convertOpts, opts...) }
}

func NewClient(src RecordSource, opts ...Option) *Client {
	o := clientOptions{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	co := o.convertOpts
	return &Client{
		src:         src,
		log:         o.log,
		metrics:     o.metrics,
		glossaries:  convert.NewGlossaryConverter(co...),
		terms:       convert.NewGlossaryTermConverter(co...),
		categories:  convert.NewGlossaryCategoryConverter(co...),
		projects:    convert.NewProjectConverter(co...),
		lines:       convert.NewLineConverter(co...),
		schemaTypes: convert.NewSchemaTypeConverter(co...),
		stubs:       convert.NewElementStubConverter(co...),
	}
}

// observe runs fn as operation op, logs failures and records metrics.
func observe[T any](c *Client, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	outcome := "ok"
	if err != nil {
		kind := apierr.KindOf(err)
		outcome = kind.String()
		ev := c.log.Warn()
		if kind == apierr.KindUnexpectedResponse || kind == apierr.KindUnknown {
			ev = c.log.Error()
		}
		ev.Err(err).Str("operation", op).Msg("Operation failed")
	} else {
		c.log.Debug().Str("operation", op).Dur("duration", time.Since(start)).Msg("Operation succeeded")
	}
	c.metrics.RecordOperation(op, outcome, time.Since(start))
	return v, err
}

func validateUserID(op, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apierr.New(apierr.KindUserNotAuthorized, op, "no user ID given")
	}
	return nil
}

func validateGUID(op, name, guid string) error {
	if !api.IsValidGUID(guid) {
		return apierr.New(apierr.KindInvalidParameter, op, "%s %q is invalid", name, guid)
	}
	return nil
}

func validateRequest(op, userID string, guids ...string) error {
	if err := validateUserID(op, userID); err != nil {
		return err
	}
	for _, g := range guids {
		if err := validateGUID(op, "guid", g); err != nil {
			return err
		}
	}
	return nil
}

// Paging restricts a result list. PageSize 0 returns all results
// starting at StartFrom.
type Paging struct {
	StartFrom int
	PageSize  int
}

func page[T any](op string, items []T, p Paging) ([]T, error) {
	if p.StartFrom < 0 || p.PageSize < 0 {
		return nil, apierr.New(apierr.KindInvalidParameter, op, "invalid paging startFrom=%d pageSize=%d", p.StartFrom, p.PageSize)
	}
	if p.StartFrom >= len(items) {
		return nil, nil
	}
	items = items[p.StartFrom:]
	if p.PageSize > 0 && p.PageSize < len(items) {
		items = items[:p.PageSize]
	}
	return items, nil
}

// sourceError maps record source failures to client errors.
func sourceError(op string, err error) error {
	kind := apierr.KindUnexpectedResponse
	switch {
	case errors.Is(err, repo.ErrNotFound):
		kind = apierr.KindUnrecognizedGUID
	case errors.Is(err, repo.ErrRelationshipsRemain):
		kind = apierr.KindEntityNotDeleted
	case errors.Is(err, repo.ErrInvalid), errors.Is(err, repo.ErrDuplicate):
		kind = apierr.KindInvalidParameter
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = apierr.KindServerUnreachable
	}
	return apierr.Wrap(kind, op, err)
}

func convertWith[T catalog.Bean](c *Client, cv *convert.Converter[T], op string, req convert.Request) (T, error) {
	b, err := cv.Convert(cv.BeanClass(), req, op)
	c.metrics.RecordConversion(cv.BeanClass().String(), string(req.Variant()), err)
	if err != nil {
		var zero T
		return zero, apierr.FromConversion(op, err)
	}
	return b, nil
}

func convertAll[T catalog.Bean, R any](c *Client, cv *convert.Converter[T], op string, records []R, req func(R) convert.Request) ([]T, error) {
	result := make([]T, 0, len(records))
	for _, r := range records {
		b, err := convertWith(c, cv, op, req(r))
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, nil
}

// element fetches guid and checks that it has the expected type. A type
// check function is used since some beans cover several element types.
func (c *Client) element(ctx context.Context, op, guid, want string, ok func(string) bool) (*api.Element, error) {
	e, err := c.src.Element(ctx, guid)
	if err != nil {
		return nil, sourceError(op, err)
	}
	if !ok(e.Type) {
		return nil, apierr.New(apierr.KindUnrecognizedGUID, op, "element %s is a %s, not a %s", guid, e.Type, want)
	}
	return e, nil
}

func isType(name string) func(string) bool {
	return func(t string) bool { return t == name }
}

func isSchemaType(t string) bool {
	return strings.HasSuffix(t, "SchemaType")
}

func anyType(string) bool { return true }

func (c *Client) GetGlossary(ctx context.Context, userID, guid string) (*catalog.Glossary, error) {
	const op = "getGlossary"
	return observe(c, op, func() (*catalog.Glossary, error) {
		if err := validateRequest(op, userID, guid); err != nil {
			return nil, err
		}
		e, err := c.element(ctx, op, guid, "Glossary", isType(catalog.TypeGlossary))
		if err != nil {
			return nil, err
		}
		return convertWith(c, c.glossaries, op, convert.ElementRequest{Element: e})
	})
}

// FindGlossaries returns the glossaries matching the filter expression
// (see package filter), ordered by GUID.
func (c *Client) FindGlossaries(ctx context.Context, userID, expr string, p Paging) ([]*catalog.Glossary, error) {
	const op = "findGlossaries"
	return observe(c, op, func() ([]*catalog.Glossary, error) {
		if err := validateUserID(op, userID); err != nil {
			return nil, err
		}
		prg, err := filter.Compile(expr)
		if err != nil {
			return nil, apierr.Wrap(apierr.KindInvalidParameter, op, err)
		}
		es, err := c.src.FindElements(ctx, catalog.TypeGlossary, prg)
		if err != nil {
			return nil, sourceError(op, err)
		}
		if es, err = page(op, es, p); err != nil {
			return nil, err
		}
		return convertAll(c, c.glossaries, op, es, func(e *api.Element) convert.Request {
			return convert.ElementRequest{Element: e}
		})
	})
}

// GetGlossaryTerms returns the terms anchored in a glossary.
func (c *Client) GetGlossaryTerms(ctx context.Context, userID, glossaryGUID string, p Paging) ([]*catalog.GlossaryTerm, error) {
	const op = "getGlossaryTerms"
	return observe(c, op, func() ([]*catalog.GlossaryTerm, error) {
		related, err := c.anchored(ctx, op, userID, glossaryGUID, catalog.RelTermAnchor, p)
		if err != nil {
			return nil, err
		}
		return convertAll(c, c.terms, op, related, func(r *api.RelatedElement) convert.Request {
			return convert.RelatedElementRequest{Related: r}
		})
	})
}

// GetGlossaryCategories returns the categories anchored in a glossary.
func (c *Client) GetGlossaryCategories(ctx context.Context, userID, glossaryGUID string, p Paging) ([]*catalog.GlossaryCategory, error) {
	const op = "getGlossaryCategories"
	return observe(c, op, func() ([]*catalog.GlossaryCategory, error) {
		related, err := c.anchored(ctx, op, userID, glossaryGUID, catalog.RelCategoryAnchor, p)
		if err != nil {
			return nil, err
		}
		return convertAll(c, c.categories, op, related, func(r *api.RelatedElement) convert.Request {
			return convert.RelatedElementRequest{Related: r}
		})
	})
}

// anchored returns the elements at end 2 of the glossary's relationships of
// type relType.
func (c *Client) anchored(ctx context.Context, op, userID, glossaryGUID, relType string, p Paging) ([]*api.RelatedElement, error) {
	if err := validateRequest(op, userID, glossaryGUID); err != nil {
		return nil, err
	}
	if _, err := c.element(ctx, op, glossaryGUID, "Glossary", isType(catalog.TypeGlossary)); err != nil {
		return nil, err
	}
	related, err := c.src.RelatedElements(ctx, glossaryGUID, relType)
	if err != nil {
		return nil, sourceError(op, err)
	}
	var result []*api.RelatedElement
	for _, r := range related {
		if !r.ElementAtEnd1 {
			result = append(result, r)
		}
	}
	return page(op, result, p)
}

// GetTerm returns a term together with its glossary and categories.
func (c *Client) GetTerm(ctx context.Context, userID, guid string) (*catalog.GlossaryTerm, error) {
	const op = "getTerm"
	return observe(c, op, func() (*catalog.GlossaryTerm, error) {
		req, err := c.complex(ctx, op, userID, guid, catalog.TypeGlossaryTerm)
		if err != nil {
			return nil, err
		}
		return convertWith(c, c.terms, op, req)
	})
}

// GetCategory returns a category together with its glossary and parent.
func (c *Client) GetCategory(ctx context.Context, userID, guid string) (*catalog.GlossaryCategory, error) {
	const op = "getCategory"
	return observe(c, op, func() (*catalog.GlossaryCategory, error) {
		req, err := c.complex(ctx, op, userID, guid, catalog.TypeGlossaryCategory)
		if err != nil {
			return nil, err
		}
		return convertWith(c, c.categories, op, req)
	})
}

func (c *Client) complex(ctx context.Context, op, userID, guid, typeName string) (convert.ComplexRequest, error) {
	if err := validateRequest(op, userID, guid); err != nil {
		return convert.ComplexRequest{}, err
	}
	e, err := c.element(ctx, op, guid, typeName, isType(typeName))
	if err != nil {
		return convert.ComplexRequest{}, err
	}
	rels, err := c.src.Relationships(ctx, guid, "")
	if err != nil {
		return convert.ComplexRequest{}, sourceError(op, err)
	}
	return convert.ComplexRequest{Element: e, Relationships: rels}, nil
}

func (c *Client) GetProject(ctx context.Context, userID, guid string) (*catalog.Project, error) {
	const op = "getProject"
	return observe(c, op, func() (*catalog.Project, error) {
		if err := validateRequest(op, userID, guid); err != nil {
			return nil, err
		}
		e, err := c.element(ctx, op, guid, "Project", isType(catalog.TypeProject))
		if err != nil {
			return nil, err
		}
		return convertWith(c, c.projects, op, convert.ElementRequest{Element: e})
	})
}

// GetLine returns the relationship with the given GUID as a line.
func (c *Client) GetLine(ctx context.Context, userID, guid string) (*catalog.Line, error) {
	const op = "getLine"
	return observe(c, op, func() (*catalog.Line, error) {
		if err := validateRequest(op, userID, guid); err != nil {
			return nil, err
		}
		rel, err := c.src.Relationship(ctx, guid)
		if err != nil {
			return nil, sourceError(op, err)
		}
		return convertWith(c, c.lines, op, convert.RelationshipRequest{Relationship: rel})
	})
}

// GetTermRelationships returns the relationships of a term as lines, each
// with the element at the far end attached. If relType is empty, all
// relationships are returned.
func (c *Client) GetTermRelationships(ctx context.Context, userID, guid, relType string, p Paging) ([]*catalog.Line, error) {
	const op = "getTermRelationships"
	return observe(c, op, func() ([]*catalog.Line, error) {
		if err := validateRequest(op, userID, guid); err != nil {
			return nil, err
		}
		if _, err := c.element(ctx, op, guid, "GlossaryTerm", isType(catalog.TypeGlossaryTerm)); err != nil {
			return nil, err
		}
		related, err := c.src.RelatedElements(ctx, guid, relType)
		if err != nil {
			return nil, sourceError(op, err)
		}
		if related, err = page(op, related, p); err != nil {
			return nil, err
		}
		return convertAll(c, c.lines, op, related, func(r *api.RelatedElement) convert.Request {
			return convert.RelatedElementRequest{Related: r}
		})
	})
}

// GetSchemaType returns a schema type with its linked types and options
// embedded.
func (c *Client) GetSchemaType(ctx context.Context, userID, guid string) (*catalog.SchemaType, error) {
	const op = "getSchemaType"
	return observe(c, op, func() (*catalog.SchemaType, error) {
		if err := validateRequest(op, userID, guid); err != nil {
			return nil, err
		}
		e, err := c.element(ctx, op, guid, "schema type", isSchemaType)
		if err != nil {
			return nil, err
		}
		related, err := c.src.RelatedElements(ctx, guid, "")
		if err != nil {
			return nil, sourceError(op, err)
		}
		req := convert.CompositeRequest{Element: e}
		for _, r := range related {
			req.Relationships = append(req.Relationships, r.Relationship)
			req.Supplementary = append(req.Supplementary, r.Element)
		}
		return convertWith(c, c.schemaTypes, op, req)
	})
}

// GetElementStub returns a stub for any element.
func (c *Client) GetElementStub(ctx context.Context, userID, guid string) (*catalog.ElementStub, error) {
	const op = "getElementStub"
	return observe(c, op, func() (*catalog.ElementStub, error) {
		if err := validateRequest(op, userID, guid); err != nil {
			return nil, err
		}
		e, err := c.element(ctx, op, guid, "element", anyType)
		if err != nil {
			return nil, err
		}
		return convertWith(c, c.stubs, op, convert.ElementRequest{Element: e})
	})
}

// GetElement returns the raw record of an element.
func (c *Client) GetElement(ctx context.Context, userID, guid string) (*api.Element, error) {
	const op = "getElement"
	return observe(c, op, func() (*api.Element, error) {
		if err := validateRequest(op, userID, guid); err != nil {
			return nil, err
		}
		return c.element(ctx, op, guid, "element", anyType)
	})
}

// GetBean returns the element or relationship with the given GUID as a bean
// of the given class.
func (c *Client) GetBean(ctx context.Context, userID, guid string, class catalog.BeanClass) (catalog.Bean, error) {
	switch class {
	case catalog.ClassGlossary:
		return asBean(c.GetGlossary(ctx, userID, guid))
	case catalog.ClassGlossaryTerm:
		return asBean(c.GetTerm(ctx, userID, guid))
	case catalog.ClassGlossaryCategory:
		return asBean(c.GetCategory(ctx, userID, guid))
	case catalog.ClassProject:
		return asBean(c.GetProject(ctx, userID, guid))
	case catalog.ClassLine:
		return asBean(c.GetLine(ctx, userID, guid))
	case catalog.ClassSchemaType:
		return asBean(c.GetSchemaType(ctx, userID, guid))
	case catalog.ClassElementStub:
		return asBean(c.GetElementStub(ctx, userID, guid))
	}
	return nil, apierr.New(apierr.KindInvalidParameter, "getBean", "unknown bean class %q", class)
}

// asBean avoids returning typed nil beans.
func asBean[T catalog.Bean](b T, err error) (catalog.Bean, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}
