package convert

import (
	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/props"
)

// Project node types by classification, in precedence order.
var projectNodeTypes = []struct {
	classification string
	nodeType       catalog.ProjectNodeType
}{
	{catalog.ClassificationCampaign, catalog.NodeCampaign},
	{catalog.ClassificationTask, catalog.NodeTask},
	{catalog.ClassificationPersonalProject, catalog.NodePersonalProject},
	{catalog.ClassificationStudyProject, catalog.NodeStudyProject},
}

func NewProjectConverter(opts ...Option) *Converter[*catalog.Project] {
	return newConverter(catalog.ClassProject, "ProjectConverter", map[Variant]handler[*catalog.Project]{
		VariantElement: func(c *call, p *catalog.Project, req Request) error {
			return fillProject(c, p, req.(ElementRequest).Element)
		},
		VariantRelatedElement: func(c *call, p *catalog.Project, req Request) error {
			return fillProject(c, p, req.(RelatedElementRequest).Related.Element)
		},
	}, opts...)
}

func fillProject(c *call, p *catalog.Project, e *api.Element) error {
	h, err := BuildHeader(e)
	if err != nil {
		return err
	}
	p.Header = h

	r := c.reader(e.Properties)
	p.QualifiedName = take(r, props.QualifiedName)
	p.Name = take(r, props.Name)
	p.Description = take(r, props.Description)
	p.Identifier = take(r, props.Identifier)
	p.ProjectStatus = take(r, props.ProjectStatus)
	p.Priority = take(r, props.Priority)
	p.StartDate = take(r, props.StartDate)
	p.PlannedEndDate = take(r, props.PlannedEndDate)
	p.AdditionalProperties = take(r, props.AdditionalProperties)
	p.ExtendedProperties = r.extended()

	p.NodeType = catalog.NodeProject
	for _, nt := range projectNodeTypes {
		if _, ok := FindClassification(nt.classification, h.Classifications); ok {
			p.NodeType = nt.nodeType
			break
		}
	}
	return r.err
}
