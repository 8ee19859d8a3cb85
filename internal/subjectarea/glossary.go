package subjectarea

import (
	"context"
	"maps"
	"slices"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/apierr"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/convert"
	"github.com/dnswlt/mdcat/internal/props"
)

// glossaryElement builds the record for g. The header of g is ignored
// except for its status.
func glossaryElement(op string, g *catalog.Glossary) (*api.Element, error) {
	if g == nil {
		return nil, apierr.New(apierr.KindInvalidParameter, op, "no glossary given")
	}
	if !catalog.IsValidQualifiedName(g.QualifiedName) {
		return nil, apierr.New(apierr.KindInvalidParameter, op, "invalid qualified name %q", g.QualifiedName)
	}
	for k, v := range g.AdditionalProperties {
		if !catalog.IsValidAdditionalProperty(k, v) {
			return nil, apierr.New(apierr.KindInvalidParameter, op, "invalid additional property %q", k)
		}
	}

	bag := props.NewBag()
	for _, k := range slices.Sorted(maps.Keys(g.ExtendedProperties)) {
		v, ok := props.ValueOf(g.ExtendedProperties[k])
		if !ok {
			return nil, apierr.New(apierr.KindInvalidParameter, op, "extended property %q has unsupported type %T", k, g.ExtendedProperties[k])
		}
		bag.Set(k, v)
	}
	setString := func(f props.Field[string], s string) {
		if s != "" {
			bag.Set(f.Name, props.StringValue(s))
		}
	}
	setString(props.QualifiedName, g.QualifiedName)
	setString(props.DisplayName, g.Name)
	setString(props.Description, g.Description)
	setString(props.Usage, g.Usage)
	setString(props.Language, g.Language)
	if len(g.AdditionalProperties) > 0 {
		bag.Set(props.AdditionalProperties.Name, props.StringMapValue(g.AdditionalProperties))
	}

	e := &api.Element{
		Type:       catalog.TypeGlossary,
		Properties: bag,
	}
	if g.Header != nil {
		e.Status = g.Header.Status
	}
	taxonomy := g.NodeType == catalog.NodeTaxonomy || g.NodeType == catalog.NodeTaxonomyAndCanonicalGlossary || g.OrganizingPrinciple != ""
	canonical := g.NodeType == catalog.NodeCanonicalGlossary || g.NodeType == catalog.NodeTaxonomyAndCanonicalGlossary || g.Scope != ""
	if taxonomy {
		c := &api.Classification{Name: catalog.ClassificationTaxonomy}
		if g.OrganizingPrinciple != "" {
			c.Properties = props.NewBag().Set(props.OrganizingPrinciple.Name, props.StringValue(g.OrganizingPrinciple))
		}
		e.Classifications = append(e.Classifications, c)
	}
	if canonical {
		c := &api.Classification{Name: catalog.ClassificationCanonicalVocabulary}
		if g.Scope != "" {
			c.Properties = props.NewBag().Set(props.Scope.Name, props.StringValue(g.Scope))
		}
		e.Classifications = append(e.Classifications, c)
	}
	return e, nil
}

// CreateGlossary stores a new glossary and returns it as read back from the
// record source. A GUID is assigned unless g's header carries one.
func (c *Client) CreateGlossary(ctx context.Context, userID string, g *catalog.Glossary) (*catalog.Glossary, error) {
	const op = "createGlossary"
	return observe(c, op, func() (*catalog.Glossary, error) {
		if err := validateUserID(op, userID); err != nil {
			return nil, err
		}
		e, err := glossaryElement(op, g)
		if err != nil {
			return nil, err
		}
		if g.Header != nil && g.Header.GUID != "" {
			if err := validateGUID(op, "guid", g.Header.GUID); err != nil {
				return nil, err
			}
			e.GUID = g.Header.GUID
		}
		stored, err := c.src.InsertElement(ctx, e, userID)
		if err != nil {
			return nil, sourceError(op, err)
		}
		c.log.Info().Str("guid", stored.GUID).Str("user", userID).Msg("Created glossary")
		return convertWith(c, c.glossaries, op, convert.ElementRequest{Element: stored})
	})
}

// UpdateGlossary replaces all properties and classifications of the
// glossary with the given GUID.
func (c *Client) UpdateGlossary(ctx context.Context, userID, guid string, g *catalog.Glossary) (*catalog.Glossary, error) {
	const op = "updateGlossary"
	return observe(c, op, func() (*catalog.Glossary, error) {
		if err := validateRequest(op, userID, guid); err != nil {
			return nil, err
		}
		if _, err := c.element(ctx, op, guid, "Glossary", isType(catalog.TypeGlossary)); err != nil {
			return nil, err
		}
		e, err := glossaryElement(op, g)
		if err != nil {
			return nil, err
		}
		e.GUID = guid
		stored, err := c.src.UpdateElement(ctx, e, userID)
		if err != nil {
			return nil, sourceError(op, err)
		}
		c.log.Info().Str("guid", guid).Int64("version", stored.Version).Str("user", userID).Msg("Updated glossary")
		return convertWith(c, c.glossaries, op, convert.ElementRequest{Element: stored})
	})
}

// DeleteGlossary removes an empty glossary. Glossaries that still anchor
// terms or categories are not deleted.
func (c *Client) DeleteGlossary(ctx context.Context, userID, guid string) error {
	const op = "deleteGlossary"
	_, err := observe(c, op, func() (struct{}, error) {
		if err := validateRequest(op, userID, guid); err != nil {
			return struct{}{}, err
		}
		if _, err := c.element(ctx, op, guid, "Glossary", isType(catalog.TypeGlossary)); err != nil {
			return struct{}{}, err
		}
		if err := c.src.DeleteElement(ctx, guid); err != nil {
			return struct{}{}, sourceError(op, err)
		}
		c.log.Info().Str("guid", guid).Str("user", userID).Msg("Deleted glossary")
		return struct{}{}, nil
	})
	return err
}
