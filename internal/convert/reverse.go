package convert

import (
	"github.com/leapstack-labs/lkml2cube/internal/classify"
	"github.com/leapstack-labs/lkml2cube/pkg/core"
	"github.com/leapstack-labs/lkml2cube/pkg/cube"
	"github.com/leapstack-labs/lkml2cube/pkg/expr"
	"github.com/leapstack-labs/lkml2cube/pkg/lookml"
	"github.com/leapstack-labs/lkml2cube/pkg/typemap"
)

// defaultTimeframes are written for time dimensions, which become dimension
// groups in LookML.
var defaultTimeframes = []string{"raw", "time", "date", "week", "month", "quarter", "year"}

// Reverse converts a Cube meta model into LookML. Table-backed cubes become
// views; alias-only cubes (Cube views) become explores.
func (c *Converter) Reverse(meta *cube.Meta) (*Result, error) {
	if meta == nil || len(meta.Cubes) == 0 {
		return nil, &core.MissingRequiredSectionError{Section: "cubes", Err: core.ErrNoCubes}
	}
	r := c.newRun("explores")

	entities := make([]core.Entity, 0, len(meta.Cubes))
	for _, mc := range meta.Cubes {
		entities = append(entities, EntityFromMeta(mc))
	}
	base, composed := classify.Partition(entities)
	r.logger.Debug("classified cubes", "base", len(base), "composed", len(composed))

	var model lookml.Model
	for i := range base {
		model.Views = append(model.Views, r.lookmlView(&base[i]))
	}

	index := core.NewIndex(base)
	for i := range composed {
		ex, diags := classify.Synthesize(&composed[i])
		r.diags.Merge(diags)
		for _, name := range classify.References(&composed[i]) {
			if !index.Has(name) {
				r.diags.Warn(core.CodeUnknownEntity, ex.Name, "alias members reference %s, which is not a table-backed cube", name)
			}
		}
		model.Explores = append(model.Explores, lookmlExplore(ex))
	}

	res := r.result()
	res.LookML = model
	return res, nil
}

// EntityFromMeta builds a core entity from a meta API cube. Member kinds stay
// in Cube vocabulary.
func EntityFromMeta(mc cube.MetaCube) core.Entity {
	e := core.Entity{
		Name:        mc.Name,
		Label:       firstNonEmpty(mc.Title, mc.Description, Humanize(mc.Name)),
		Description: mc.Description,
	}
	if mc.Public != nil && !*mc.Public {
		hidden := true
		e.Hidden = &hidden
	}
	switch {
	case mc.SQLTable != "":
		e.Source = &core.DataSource{Table: mc.SQLTable}
	case mc.SQL != "":
		e.Source = &core.DataSource{Query: mc.SQL}
	}
	if mc.Extends != "" {
		e.Extends = []string{mc.Extends}
	}

	for _, m := range mc.Dimensions {
		e.Attributes = append(e.Attributes, core.Attribute{
			Name:        m.ShortName(),
			Label:       m.Title,
			Description: m.Description,
			Kind:        Snakify(m.Kind()),
			Role:        core.RoleDimension,
			SQL:         m.SQL,
			Hidden:      !m.Public,
			PrimaryKey:  m.PrimaryKey,
			Alias:       m.AliasMember,
		})
	}
	for _, m := range mc.Measures {
		e.Measures = append(e.Measures, core.Measure{
			Name:        m.ShortName(),
			Label:       m.Title,
			Description: m.Description,
			Kind:        Snakify(m.Kind()),
			SQL:         m.SQL,
			Hidden:      !m.Public,
			Alias:       m.AliasMember,
		})
	}
	e.Kind = classify.Classify(&e)
	return e
}

func (r *run) lookmlView(e *core.Entity) lookml.View {
	v := lookml.View{
		Name:    e.Name,
		Label:   e.Label,
		Extends: e.Extends,
		Hidden:  e.Hidden,
	}
	if e.Description != e.Label {
		v.Description = e.Description
	}
	if !e.Source.IsZero() {
		if e.Source.Table != "" {
			v.SQLTableName = e.Source.Table
		} else {
			v.DerivedTableSQL = expr.ToLookML(e.Source.Query)
		}
	}

	for _, a := range e.Attributes {
		kind, ok := r.reverseKind(e.Name, a.Name, a.Kind)
		if !ok {
			continue
		}
		f := lookml.Field{
			Name:        a.Name,
			Label:       firstNonEmpty(a.Label, a.Name),
			Description: a.Description,
			Type:        kind,
			SQL:         expr.ToLookML(a.SQL),
			Hidden:      a.Hidden,
			PrimaryKey:  a.PrimaryKey,
		}
		if kind == typemap.KindTime {
			f.Timeframes = defaultTimeframes
			v.DimensionGroups = append(v.DimensionGroups, f)
			continue
		}
		v.Dimensions = append(v.Dimensions, f)
	}

	for _, m := range e.Measures {
		kind, ok := r.reverseKind(e.Name, m.Name, m.Kind)
		if !ok {
			continue
		}
		f := lookml.Field{
			Name:        m.Name,
			Label:       firstNonEmpty(m.Label, m.Name),
			Description: m.Description,
			Type:        kind,
			Hidden:      m.Hidden,
		}
		// LookML counts take no expression
		if kind != typemap.KindCount {
			f.SQL = expr.ToLookML(m.SQL)
		}
		v.Measures = append(v.Measures, f)
	}
	return v
}

func (r *run) reverseKind(entity, field, kind string) (string, bool) {
	mapped, ok := typemap.Map(kind, typemap.Reverse)
	if !ok {
		r.diags.Add(core.SeverityError, core.CodeUnsupportedType, entity,
			&core.UnsupportedTypeError{Entity: entity, Field: field, Kind: kind})
	}
	return mapped, ok
}

func lookmlExplore(ex core.Explore) lookml.Explore {
	out := lookml.Explore{
		Name:        ex.Name,
		Label:       ex.Label,
		Description: ex.Description,
		ViewName:    ex.ViewName,
		Hidden:      ex.Hidden,
	}
	for _, j := range ex.Joins {
		out.Joins = append(out.Joins, lookml.Join{
			Name:         j.Target,
			Type:         j.Type,
			Relationship: j.Relationship,
			SQLOn:        j.Condition,
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
