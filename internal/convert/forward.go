package convert

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/lkml2cube/internal/inherit"
	"github.com/leapstack-labs/lkml2cube/internal/joins"
	"github.com/leapstack-labs/lkml2cube/pkg/core"
	"github.com/leapstack-labs/lkml2cube/pkg/cube"
	"github.com/leapstack-labs/lkml2cube/pkg/expr"
	"github.com/leapstack-labs/lkml2cube/pkg/typemap"
)

// DefaultRelationship is used for joins that declare none, as LookML does.
const DefaultRelationship = "many_to_one"

// anchorIncludes is the member selection of every generated view entry.
const anchorIncludes = "*"

// Cubes converts LookML views into Cube cubes and attaches every explore
// join to the cube it joins in.
func (c *Converter) Cubes(m *core.Model) (*Result, error) {
	if len(m.Entities) == 0 {
		return nil, &core.MissingRequiredSectionError{Section: "views", Err: core.ErrNoViews}
	}
	r := c.newRun("cubes")
	doc := r.cubes(m)

	res := r.result()
	res.Cube = doc
	return res, nil
}

// Views converts LookML views and explores into Cube cubes plus one Cube
// view per explore.
func (c *Converter) Views(m *core.Model) (*Result, error) {
	if len(m.Entities) == 0 {
		return nil, &core.MissingRequiredSectionError{Section: "views", Err: core.ErrNoViews}
	}
	if len(m.Explores) == 0 {
		return nil, &core.MissingRequiredSectionError{Section: "explores", Err: core.ErrNoExplores}
	}
	r := c.newRun("views")
	doc := r.cubes(m)
	seen := make(map[string]bool, len(m.Explores))
	for i := range m.Explores {
		ex := &m.Explores[i]
		cv := r.compositeView(ex, r.graphs[i], c.opts.UseExploresName)
		if seen[cv.Name] {
			name := uniqueName(cv.Name, seen)
			r.diags.Warn(core.CodeDuplicateName, ex.Name, "view %s is already generated, renamed to %s", cv.Name, name)
			cv.Name = name
			cv.Members[0].Alias = name
		}
		seen[cv.Name] = true
		doc.Views = append(doc.Views, view(cv))
	}

	res := r.result()
	res.Cube = doc
	return res, nil
}

func (r *run) cubes(m *core.Model) cube.Document {
	entities, diags := inherit.Resolve(m.Entities, r.logger)
	r.diags.Merge(diags)

	var doc cube.Document
	for i := range entities {
		e := &entities[i]
		if e.Abstract {
			r.logger.Debug("skipping abstract view", "entity", e.Name)
			continue
		}
		if cb, ok := r.cube(e); ok {
			doc.Cubes = append(doc.Cubes, cb)
		}
	}

	r.logger.Debug("mapped cubes", "views", len(entities), "cubes", len(doc.Cubes))
	r.cubeIndex = make(map[string]int, len(doc.Cubes))
	for i, cb := range doc.Cubes {
		if _, exists := r.cubeIndex[cb.Name]; !exists {
			r.cubeIndex[cb.Name] = i
		}
	}
	r.graphs = make([]*joins.Graph, len(m.Explores))
	for i := range m.Explores {
		r.graphs[i] = r.attachJoins(&doc, &m.Explores[i])
	}
	return doc
}

func (r *run) cube(e *core.Entity) (cube.Cube, bool) {
	cb := cube.Cube{
		Name:        e.Name,
		Title:       e.Label,
		Description: e.Description,
	}
	switch {
	case e.Source.IsZero():
		r.diags.Warn(core.CodeMissingSource, e.Name, "view has neither sql_table_name nor derived_table.sql")
		return cube.Cube{}, false
	case e.Source.Table != "":
		cb.SQLTable = e.Source.Table
	default:
		cb.SQL = expr.Wrap(expr.ToCube(e.Source.Query))
	}

	if len(e.Attributes) == 0 {
		r.diags.Warn(core.CodeMissingSource, e.Name, "cubes need at least one dimension")
		return cube.Cube{}, false
	}

	for _, a := range e.Attributes {
		if dim, ok := r.dimension(e.Name, a); ok {
			cb.Dimensions = append(cb.Dimensions, dim)
		}
	}
	for _, m := range e.Measures {
		if ms, ok := r.measure(e, m); ok {
			cb.Measures = append(cb.Measures, ms)
		}
	}
	return cb, true
}

func (r *run) dimension(entity string, a core.Attribute) (cube.Dimension, bool) {
	kind := a.Kind
	if kind == "" {
		kind = typemap.KindString
	}
	mapped, ok := typemap.Map(kind, typemap.Forward)
	if !ok {
		r.diags.Add(core.SeverityError, core.CodeUnsupportedType, entity,
			&core.UnsupportedTypeError{Entity: entity, Field: a.Name, Kind: kind})
		return cube.Dimension{}, false
	}

	sql := expr.ToCube(a.SQL)
	switch {
	case kind != typemap.KindTier:
	case len(a.InvalidTiers) > 0:
		r.diags.Warn(core.CodeInvalidTier, entity, "dimension %s has non-numeric tiers %s, kept without buckets",
			a.Name, strings.Join(a.InvalidTiers, ", "))
	default:
		tiered, err := typemap.Tier(sql, a.Tiers)
		if err != nil {
			r.diags.Add(core.SeverityWarning, core.CodeTooFewTiers, entity, err)
		} else {
			sql = tiered
		}
	}

	dim := cube.Dimension{
		Name:        a.Name,
		Title:       a.Label,
		Description: a.Description,
		SQL:         expr.Wrap(sql),
		Type:        mapped,
		PrimaryKey:  a.PrimaryKey,
	}
	if a.Hidden {
		dim.Public = new(bool)
	}
	return dim, true
}

func (r *run) measure(e *core.Entity, m core.Measure) (cube.Measure, bool) {
	if m.Kind == typemap.KindList {
		r.diags = append(r.diags, core.Diagnostic{
			Severity: core.SeverityInfo,
			Code:     core.CodeSkippedMember,
			Entity:   e.Name,
			Message:  "measure " + m.Name + " of type list has no Cube equivalent",
		})
		return cube.Measure{}, false
	}
	mapped, ok := typemap.Map(m.Kind, typemap.Forward)
	if !ok {
		r.diags.Add(core.SeverityError, core.CodeUnsupportedType, e.Name,
			&core.UnsupportedTypeError{Entity: e.Name, Field: m.Name, Kind: m.Kind})
		return cube.Measure{}, false
	}

	ms := cube.Measure{
		Name:         m.Name,
		Title:        m.Label,
		Description:  m.Description,
		Type:         mapped,
		DrillMembers: r.drillMembers(e, m.DrillFields),
	}
	if m.Kind != typemap.KindCount || m.SQL != "" {
		ms.SQL = expr.Wrap(expr.ToCube(m.SQL))
	}
	if m.Hidden {
		ms.Public = new(bool)
	}
	return ms, true
}

// drillMembers expands "set_name*" references through the view's sets.
func (r *run) drillMembers(e *core.Entity, fields []string) []string {
	var members []string
	for _, f := range fields {
		name, isSet := strings.CutSuffix(f, "*")
		if !isSet {
			members = append(members, f)
			continue
		}
		set, ok := e.Sets[name]
		if !ok {
			r.diags.Warn(core.CodeUndefinedSet, e.Name, "set undefined %s", name)
			continue
		}
		members = append(members, set...)
	}
	return members
}

// attachJoins adds every well-formed join of an explore to the joined cube.
// A join with "from:" gets a hidden cube of its own extending the source view.
// The explore's join graph is returned for building its view.
func (r *run) attachJoins(doc *cube.Document, ex *core.Explore) *joins.Graph {
	g, diags := joins.Build(ex.Joins)
	r.diags.Merge(diags)

	for _, j := range g.Joins() {
		target := r.findCube(doc, j.Target)
		if target == nil && j.From != "" {
			hidden := false
			doc.Cubes = append(doc.Cubes, cube.Cube{
				Name:    j.Target,
				Extends: j.From,
				Shown:   &hidden,
			})
			r.cubeIndex[j.Target] = len(doc.Cubes) - 1
			target = &doc.Cubes[len(doc.Cubes)-1]
		}
		if target == nil {
			r.diags.Warn(core.CodeUnknownEntity, ex.Name, "join %s names no converted view", j.Target)
			continue
		}

		relationship := j.Relationship
		if relationship == "" {
			relationship = DefaultRelationship
		}
		source, condition := j.Source, j.Condition
		if ex.From != "" {
			// the explore aliases its anchor; Cube only knows the source cube
			condition = expr.RenameEntity(condition, ex.Name, ex.Anchor())
			if source == ex.Name {
				source = ex.Anchor()
			}
		}
		join := cube.Join{
			Name:         source,
			SQL:          expr.Wrap(expr.ToCube(condition)),
			Relationship: relationship,
		}
		if !hasJoin(target, join) {
			target.Joins = append(target.Joins, join)
		}
	}
	return g
}

// compositeView groups an explore's anchor with every joined entity at its
// shortest join path.
func (r *run) compositeView(ex *core.Explore, g *joins.Graph, useExploreName bool) core.CompositeView {
	name := ex.Name
	if !useExploreName && ex.Label != "" {
		name = Snakify(ex.Label)
	}
	description := ex.Description
	if description == "" {
		description = ex.Label
	}
	anchor, root := ex.Anchor(), ex.Root()

	cv := core.CompositeView{
		Name:        name,
		Description: description,
		Anchor:      anchor,
		Members:     []core.ViewMember{{Path: anchor, Alias: name, Includes: anchorIncludes}},
	}

	for _, j := range g.Joins() {
		path, err := g.ResolvePath(root, j.Target)
		if err != nil {
			r.diags.Add(core.SeverityWarning, core.CodeUnreachable, ex.Name, err)
		}
		path = anchor + strings.TrimPrefix(path, root)
		cv.Members = append(cv.Members, core.ViewMember{Path: path, Alias: j.Target, Includes: anchorIncludes})
	}

	r.logger.Debug("built view", "explore", ex.Name, "view", name, "members", len(cv.Members))
	return cv
}

// uniqueName returns name with the lowest numeric suffix not yet in seen.
func uniqueName(name string, seen map[string]bool) string {
	for n := 2; ; n++ {
		candidate := name + "_" + strconv.Itoa(n)
		if !seen[candidate] {
			return candidate
		}
	}
}

// view renders a composite view as a Cube view.
func view(cv core.CompositeView) cube.View {
	v := cube.View{Name: cv.Name, Description: cv.Description}
	for _, m := range cv.Members {
		v.Cubes = append(v.Cubes, cube.ViewCube{JoinPath: m.Path, Includes: m.Includes, Alias: m.Alias})
	}
	return v
}

func (r *run) findCube(doc *cube.Document, name string) *cube.Cube {
	i, ok := r.cubeIndex[name]
	if !ok {
		return nil
	}
	return &doc.Cubes[i]
}

func hasJoin(cb *cube.Cube, j cube.Join) bool {
	for _, existing := range cb.Joins {
		if existing.Name == j.Name && existing.SQL == j.SQL {
			return true
		}
	}
	return false
}
