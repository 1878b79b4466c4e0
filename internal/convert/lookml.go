package convert

import (
	"github.com/leapstack-labs/lkml2cube/pkg/core"
	"github.com/leapstack-labs/lkml2cube/pkg/lookml"
)

// abstractExtension marks LookML views that only exist to be extended.
const abstractExtension = "required"

// FromLookML builds the core model of a loaded LookML project.
func FromLookML(m *lookml.Model) *core.Model {
	out := &core.Model{
		Entities: make([]core.Entity, 0, len(m.Views)),
		Explores: make([]core.Explore, 0, len(m.Explores)),
	}
	for _, v := range m.Views {
		out.Entities = append(out.Entities, entityFromView(v))
	}
	for _, e := range m.Explores {
		out.Explores = append(out.Explores, exploreFromLookML(e))
	}
	return out
}

func entityFromView(v lookml.View) core.Entity {
	e := core.Entity{
		Name:        v.Name,
		Label:       v.Label,
		Description: v.Description,
		Kind:        core.EntityBase,
		Extends:     v.Extends,
		Abstract:    v.Extension == abstractExtension,
		Hidden:      v.Hidden,
	}
	switch {
	case v.SQLTableName != "":
		e.Source = &core.DataSource{Table: v.SQLTableName}
	case v.DerivedTableSQL != "":
		e.Source = &core.DataSource{Query: v.DerivedTableSQL}
	}

	for _, f := range v.Dimensions {
		e.Attributes = append(e.Attributes, attributeFromField(f, core.RoleDimension))
	}
	for _, f := range v.DimensionGroups {
		e.Attributes = append(e.Attributes, attributeFromField(f, core.RoleDimensionGroup))
	}
	for _, f := range v.Filters {
		e.Filters = append(e.Filters, attributeFromField(f, core.RoleFilter))
	}
	for _, f := range v.Measures {
		e.Measures = append(e.Measures, core.Measure{
			Name:        f.Name,
			Label:       f.Label,
			Description: f.Description,
			Kind:        f.Type,
			SQL:         f.SQL,
			Hidden:      f.Hidden,
			DrillFields: f.DrillFields,
		})
	}
	if len(v.Sets) > 0 {
		e.Sets = make(map[string][]string, len(v.Sets))
		for _, s := range v.Sets {
			e.Sets[s.Name] = s.Fields
		}
	}
	return e
}

func attributeFromField(f lookml.Field, role core.AttributeRole) core.Attribute {
	return core.Attribute{
		Name:         f.Name,
		Label:        f.Label,
		Description:  f.Description,
		Kind:         f.Type,
		Role:         role,
		SQL:          f.SQL,
		Hidden:       f.Hidden,
		Tiers:        f.Tiers,
		InvalidTiers: f.InvalidTiers,
		PrimaryKey:   f.PrimaryKey,
	}
}

func exploreFromLookML(e lookml.Explore) core.Explore {
	ex := core.Explore{
		Name:        e.Name,
		Label:       e.Label,
		Description: e.Description,
		ViewName:    e.ViewName,
		From:        e.From,
		Hidden:      e.Hidden,
	}
	if ex.ViewName == "" {
		ex.ViewName = e.From
	}
	anchor := ex.Anchor()
	for _, j := range e.Joins {
		ex.Joins = append(ex.Joins, core.Edge{
			Owner:        anchor,
			Target:       j.Name,
			Condition:    j.SQLOn,
			Relationship: j.Relationship,
			Type:         j.Type,
			From:         j.From,
		})
	}
	return ex
}
