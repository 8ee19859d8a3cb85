// Package repo holds catalog records in memory and indexes them for lookups
// by GUID and by relationship end.
package repo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/filter"
	"github.com/dnswlt/mdcat/internal/props"
	"github.com/dnswlt/mdcat/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicate           = errors.New("duplicate GUID")
	ErrRelationshipsRemain = errors.New("relationships remain")
	ErrInvalid             = errors.New("invalid record")
)

type Repository struct {
	mu            sync.RWMutex
	elements      map[string]*api.Element
	relationships map[string]*api.Relationship
	// GUIDs of the relationships attached to each element.
	byEnd map[string][]string

	config Config
	log    zerolog.Logger
	now    func() time.Time

	// Store and file that changes are written back to. If st is nil,
	// changes are kept in memory only.
	st        store.Store
	writePath string
}

type Option func(*Repository)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Repository) { r.log = l }
}

// WithWriteBack makes mutations persistent: new records are appended to
// writePath, changed and deleted records are rewritten in the file they
// were read from.
func WithWriteBack(st store.Store, writePath string) Option {
	return func(r *Repository) {
		r.st = st
		r.writePath = writePath
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func NewRepository(config Config, opts ...Option) *Repository {
	r := &Repository{
		elements:      make(map[string]*api.Element),
		relationships: make(map[string]*api.Relationship),
		byEnd:         make(map[string][]string),
		config:        config,
		log:           zerolog.Nop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reads all record files below recordsDir and validates the result.
func Load(ctx context.Context, st store.Store, config Config, recordsDir string, opts ...Option) (*Repository, error) {
	r := NewRepository(config, opts...)
	paths, err := store.RecordFiles(st, recordsDir)
	if err != nil {
		return nil, fmt.Errorf("cannot list record files: %v", err)
	}
	var rels []*api.Relationship
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.log.Debug().Str("path", p).Msg("Reading record file")
		records, err := store.ReadRecords(st, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read records from %s: %v", p, err)
		}
		for _, rec := range records {
			switch x := rec.(type) {
			case *api.Element:
				if err := r.addElement(x); err != nil {
					return nil, fmt.Errorf("%s:%d: %w", p, x.SourceInfo.Line, err)
				}
			case *api.Relationship:
				// Added after all elements so that ends can be checked.
				rels = append(rels, x)
			}
		}
	}
	for _, rel := range rels {
		if err := r.addRelationship(rel); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", rel.SourceInfo.Path, rel.SourceInfo.Line, err)
		}
	}
	r.log.Info().Int("elements", len(r.elements)).Int("relationships", len(r.relationships)).Msg("Loaded records")
	return r, nil
}

// Counts returns the number of elements and relationships.
func (r *Repository) Counts() (elements, relationships int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.elements), len(r.relationships)
}

func (r *Repository) validateElement(e *api.Element) error {
	if !api.IsValidGUID(e.GUID) {
		return fmt.Errorf("%w: invalid GUID %q", ErrInvalid, e.GUID)
	}
	if !api.IsValidTypeName(e.Type) {
		return fmt.Errorf("%w: element %s has invalid type %q", ErrInvalid, e.GUID, e.Type)
	}
	for i, c := range e.Classifications {
		if c == nil || !catalog.IsValidClassificationName(c.Name) {
			return fmt.Errorf("%w: element %s: invalid classification #%d", ErrInvalid, e.GUID, i)
		}
	}
	qn, err := qualifiedName(e)
	if err != nil {
		return fmt.Errorf("%w: element %s: %v", ErrInvalid, e.GUID, err)
	}
	if qn != "" && !catalog.IsValidQualifiedName(qn) {
		return fmt.Errorf("%w: element %s has invalid qualified name %q", ErrInvalid, e.GUID, qn)
	}
	if err := r.config.Validation.Accept(e); err != nil {
		return fmt.Errorf("%w: element %s: %v", ErrInvalid, e.GUID, err)
	}
	return nil
}

func qualifiedName(e *api.Element) (string, error) {
	return props.Get(e.Properties, props.QualifiedName)
}

func (r *Repository) addElement(e *api.Element) error {
	if err := r.validateElement(e); err != nil {
		return err
	}
	if _, ok := r.elements[e.GUID]; ok {
		return fmt.Errorf("%w: element %s", ErrDuplicate, e.GUID)
	}
	r.elements[e.GUID] = e
	return nil
}

// addRelationship validates rel and adds it. Missing end types are filled
// in from the end elements.
func (r *Repository) addRelationship(rel *api.Relationship) error {
	if !api.IsValidGUID(rel.GUID) {
		return fmt.Errorf("%w: invalid GUID %q", ErrInvalid, rel.GUID)
	}
	if !api.IsValidTypeName(rel.Type) {
		return fmt.Errorf("%w: relationship %s has invalid type %q", ErrInvalid, rel.GUID, rel.Type)
	}
	if _, ok := r.relationships[rel.GUID]; ok {
		return fmt.Errorf("%w: relationship %s", ErrDuplicate, rel.GUID)
	}
	if err := r.config.Validation.Accept(rel); err != nil {
		return fmt.Errorf("%w: relationship %s: %v", ErrInvalid, rel.GUID, err)
	}
	for _, end := range []*api.ElementRef{&rel.End1, &rel.End2} {
		e, ok := r.elements[end.GUID]
		if !ok {
			return fmt.Errorf("%w: relationship %s refers to unknown element %q", ErrInvalid, rel.GUID, end.GUID)
		}
		if end.Type == "" {
			end.Type = e.Type
		} else if end.Type != e.Type {
			return fmt.Errorf("%w: relationship %s: end %s has type %s, not %s", ErrInvalid, rel.GUID, end.GUID, e.Type, end.Type)
		}
	}
	r.relationships[rel.GUID] = rel
	r.byEnd[rel.End1.GUID] = append(r.byEnd[rel.End1.GUID], rel.GUID)
	if rel.End2.GUID != rel.End1.GUID {
		r.byEnd[rel.End2.GUID] = append(r.byEnd[rel.End2.GUID], rel.GUID)
	}
	return nil
}

// Element returns a copy of the element with the given GUID.
func (r *Repository) Element(ctx context.Context, guid string) (*api.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.elements[guid]
	if !ok {
		return nil, fmt.Errorf("element %s: %w", guid, ErrNotFound)
	}
	return e.Copy(), nil
}

// Relationship returns a copy of the relationship with the given GUID.
func (r *Repository) Relationship(ctx context.Context, guid string) (*api.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rel, ok := r.relationships[guid]
	if !ok {
		return nil, fmt.Errorf("relationship %s: %w", guid, ErrNotFound)
	}
	return rel.Copy(), nil
}

// Relationships returns copies of the relationships attached to the
// element with the given GUID, sorted by GUID. If relType is not empty,
// only relationships of that type are returned.
func (r *Repository) Relationships(ctx context.Context, guid, relType string) ([]*api.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.elements[guid]; !ok {
		return nil, fmt.Errorf("element %s: %w", guid, ErrNotFound)
	}
	return r.relationshipsOf(guid, relType), nil
}

func (r *Repository) relationshipsOf(guid, relType string) []*api.Relationship {
	var result []*api.Relationship
	for _, id := range r.byEnd[guid] {
		rel := r.relationships[id]
		if relType == "" || rel.Type == relType {
			result = append(result, rel.Copy())
		}
	}
	slices.SortFunc(result, func(a, b *api.Relationship) int { return cmp.Compare(a.GUID, b.GUID) })
	return result
}

// RelatedElements returns, for each relationship of the element with the
// given GUID, the relationship together with the element at its other end.
func (r *Repository) RelatedElements(ctx context.Context, guid, relType string) ([]*api.RelatedElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.elements[guid]; !ok {
		return nil, fmt.Errorf("element %s: %w", guid, ErrNotFound)
	}
	rels := r.relationshipsOf(guid, relType)
	result := make([]*api.RelatedElement, 0, len(rels))
	for _, rel := range rels {
		other, selfAtEnd1 := rel.OtherEnd(guid)
		e, ok := r.elements[other.GUID]
		if !ok {
			return nil, fmt.Errorf("relationship %s: end %s: %w", rel.GUID, other.GUID, ErrNotFound)
		}
		result = append(result, &api.RelatedElement{
			Relationship:  rel,
			Element:       e.Copy(),
			ElementAtEnd1: !selfAtEnd1,
		})
	}
	return result, nil
}

// FindElements returns copies of all elements of type typeName (any type if
// empty) that match f, sorted by GUID. A nil filter matches all elements.
func (r *Repository) FindElements(ctx context.Context, typeName string, f *filter.Program) ([]*api.Element, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*api.Element
	for _, e := range r.elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if typeName != "" && e.Type != typeName {
			continue
		}
		ok, err := f.Match(e)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, e.Copy())
		}
	}
	slices.SortFunc(result, func(a, b *api.Element) int { return cmp.Compare(a.GUID, b.GUID) })
	return result, nil
}

// InsertElement adds a copy of e. A GUID is generated if e has none. The
// stored element starts at version 1. The stored element is returned.
func (r *Repository) InsertElement(ctx context.Context, e *api.Element, userID string) (*api.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e = e.Copy()
	if e.GUID == "" {
		e.GUID = uuid.NewString()
	}
	now := r.now().UTC()
	e.Version = 1
	e.CreatedBy, e.UpdatedBy = userID, ""
	e.CreatedAt, e.UpdatedAt = &now, nil
	e.SourceInfo = &api.SourceInfo{Path: r.writePath}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.addElement(e); err != nil {
		return nil, err
	}
	if err := r.persist(e); err != nil {
		delete(r.elements, e.GUID)
		return nil, err
	}
	r.log.Info().Str("guid", e.GUID).Str("type", e.Type).Msg("Inserted element")
	return e.Copy(), nil
}

// UpdateElement replaces the properties, classifications and status of an
// existing element. The type cannot be changed. The version is incremented.
func (r *Repository) UpdateElement(ctx context.Context, e *api.Element, userID string) (*api.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.elements[e.GUID]
	if !ok {
		return nil, fmt.Errorf("element %s: %w", e.GUID, ErrNotFound)
	}
	if e.Type != "" && e.Type != old.Type {
		return nil, fmt.Errorf("%w: cannot change type of element %s from %s to %s", ErrInvalid, e.GUID, old.Type, e.Type)
	}
	updated := e.Copy()
	now := r.now().UTC()
	updated.Type = old.Type
	updated.Version = old.Version + 1
	updated.CreatedBy, updated.CreatedAt = old.CreatedBy, old.CreatedAt
	updated.UpdatedBy, updated.UpdatedAt = userID, &now
	updated.SourceInfo = old.SourceInfo
	if err := r.validateElement(updated); err != nil {
		return nil, err
	}
	r.elements[e.GUID] = updated
	if err := r.persist(updated); err != nil {
		r.elements[e.GUID] = old
		return nil, err
	}
	r.log.Info().Str("guid", e.GUID).Int64("version", updated.Version).Msg("Updated element")
	return updated.Copy(), nil
}

// DeleteElement removes an element. Elements that still have relationships
// cannot be deleted.
func (r *Repository) DeleteElement(ctx context.Context, guid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.elements[guid]
	if !ok {
		return fmt.Errorf("element %s: %w", guid, ErrNotFound)
	}
	if n := len(r.byEnd[guid]); n > 0 {
		return fmt.Errorf("element %s has %d relationships: %w", guid, n, ErrRelationshipsRemain)
	}
	if err := r.unpersist(e); err != nil {
		return err
	}
	delete(r.elements, guid)
	delete(r.byEnd, guid)
	r.log.Info().Str("guid", guid).Msg("Deleted element")
	return nil
}

// InsertRelationship adds a copy of rel. Both ends must exist.
func (r *Repository) InsertRelationship(ctx context.Context, rel *api.Relationship) (*api.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel = rel.Copy()
	if rel.GUID == "" {
		rel.GUID = uuid.NewString()
	}
	rel.Version = 1
	rel.SourceInfo = &api.SourceInfo{Path: r.writePath}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.addRelationship(rel); err != nil {
		return nil, err
	}
	if err := r.persist(rel); err != nil {
		r.removeRelationship(rel.GUID)
		return nil, err
	}
	return rel.Copy(), nil
}

func (r *Repository) DeleteRelationship(ctx context.Context, guid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rel, ok := r.relationships[guid]
	if !ok {
		return fmt.Errorf("relationship %s: %w", guid, ErrNotFound)
	}
	if err := r.unpersist(rel); err != nil {
		return err
	}
	r.removeRelationship(guid)
	return nil
}

func (r *Repository) removeRelationship(guid string) {
	rel := r.relationships[guid]
	delete(r.relationships, guid)
	for _, end := range []string{rel.End1.GUID, rel.End2.GUID} {
		r.byEnd[end] = slices.DeleteFunc(r.byEnd[end], func(id string) bool { return id == guid })
		if len(r.byEnd[end]) == 0 {
			delete(r.byEnd, end)
		}
	}
}

func (r *Repository) recordPath(rec api.Record) string {
	if si := rec.GetSourceInfo(); si != nil && si.Path != "" {
		return si.Path
	}
	return r.writePath
}

func (r *Repository) persist(rec api.Record) error {
	if r.st == nil {
		return nil
	}
	p := r.recordPath(rec)
	if p == "" {
		return nil
	}
	if err := store.InsertOrReplaceRecord(r.st, p, rec); err != nil {
		return fmt.Errorf("cannot write %s: %w", rec.GetGUID(), err)
	}
	return nil
}

func (r *Repository) unpersist(rec api.Record) error {
	if r.st == nil {
		return nil
	}
	p := r.recordPath(rec)
	if p == "" {
		return nil
	}
	if err := store.DeleteRecord(r.st, p, rec); err != nil {
		return fmt.Errorf("cannot remove %s: %w", rec.GetGUID(), err)
	}
	return nil
}
