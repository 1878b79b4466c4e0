// Package inherit flattens multi-parent "extends" chains into effective entities.
package inherit

import (
	"fmt"
	"log/slog"

	"github.com/heimdalr/dag"

	"github.com/leapstack-labs/lkml2cube/pkg/core"
)

// Flatten merges chain (parents in declared order, already flattened) and then
// child into a new entity. The first parent is the base; every later entity is
// merged on top of it. List fields are concatenated accumulated-then-incoming,
// scalar fields are replaced when the incoming entity sets them.
//
// Neither child nor any chain entity is modified and the result shares no
// slices or maps with them.
func Flatten(child core.Entity, chain []core.Entity) core.Entity {
	var acc core.Entity
	for i, parent := range chain {
		if i == 0 {
			acc = clone(parent)
			continue
		}
		acc = merge(acc, parent)
	}
	if len(chain) == 0 {
		acc = clone(child)
	} else {
		acc = merge(acc, child)
	}

	// identity always belongs to the child
	acc.Name = child.Name
	acc.Extends = append([]string(nil), child.Extends...)
	acc.Abstract = child.Abstract
	if acc.Source.IsZero() {
		acc.Kind = child.Kind
	} else {
		acc.Kind = core.EntityBase
	}
	return acc
}

func merge(acc, in core.Entity) core.Entity {
	out := core.Entity{
		Name:        acc.Name,
		Label:       acc.Label,
		Description: acc.Description,
		Kind:        acc.Kind,
		Source:      acc.Source,
		Hidden:      acc.Hidden,
		Attributes:  concat(acc.Attributes, in.Attributes),
		Measures:    concat(acc.Measures, in.Measures),
		Filters:     concat(acc.Filters, in.Filters),
		Joins:       concat(acc.Joins, in.Joins),
		Sets:        mergeSets(acc.Sets, in.Sets),
	}
	if in.Label != "" {
		out.Label = in.Label
	}
	if in.Description != "" {
		out.Description = in.Description
	}
	if in.Hidden != nil {
		hidden := *in.Hidden
		out.Hidden = &hidden
	}
	if !in.Source.IsZero() {
		src := *in.Source
		out.Source = &src
	}
	return out
}

func clone(e core.Entity) core.Entity {
	out := e
	out.Attributes = concat(nil, e.Attributes)
	out.Measures = concat(nil, e.Measures)
	out.Filters = concat(nil, e.Filters)
	out.Joins = concat(nil, e.Joins)
	out.Extends = append([]string(nil), e.Extends...)
	out.Sets = mergeSets(nil, e.Sets)
	if e.Hidden != nil {
		hidden := *e.Hidden
		out.Hidden = &hidden
	}
	if e.Source != nil {
		src := *e.Source
		out.Source = &src
	}
	return out
}

// concat returns a fresh slice holding a followed by b. Nested slices of the
// elements are copied so that merged entities never alias their inputs.
func concat[T any](a, b []T) []T {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	for i := range out {
		out[i] = deepCopy(out[i])
	}
	return out
}

func deepCopy[T any](v T) T {
	switch x := any(v).(type) {
	case core.Attribute:
		x.Tiers = append([]float64(nil), x.Tiers...)
		x.InvalidTiers = append([]string(nil), x.InvalidTiers...)
		return any(x).(T)
	case core.Measure:
		x.DrillFields = append([]string(nil), x.DrillFields...)
		return any(x).(T)
	default:
		return v
	}
}

func mergeSets(a, b map[string][]string) map[string][]string {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := make(map[string][]string, len(a)+len(b))
	for k, v := range a {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range b {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Resolver flattens every entity of one model. A Resolver belongs to a
// single conversion run.
type Resolver struct {
	index    *core.Index
	logger   *slog.Logger
	parents  map[string][]string
	resolved map[string]core.Entity
	diags    core.Diagnostics
}

// NewResolver creates a resolver over index. A nil logger discards output.
func NewResolver(index *core.Index, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		index:    index,
		logger:   logger,
		parents:  make(map[string][]string),
		resolved: make(map[string]core.Entity),
	}
}

// Resolve returns the flattened form of every entity, in input order.
// Unknown parents and parents that would close an extends cycle are skipped
// and reported.
func (r *Resolver) Resolve(entities []core.Entity) ([]core.Entity, core.Diagnostics) {
	r.link(entities)

	out := make([]core.Entity, 0, len(entities))
	for i := range entities {
		out = append(out, r.flatten(&entities[i]))
	}
	return out, r.diags
}

// link records the accepted parents of every entity. Edges are offered to an
// acyclic graph in declaration order, so the edge closing a cycle is the one
// rejected.
func (r *Resolver) link(entities []core.Entity) {
	g := dag.NewDAG()
	for _, e := range entities {
		if _, err := g.GetVertex(e.Name); err == nil {
			continue
		}
		if err := g.AddVertexByID(e.Name, e.Name); err != nil {
			r.logger.Debug("skipping vertex", "entity", e.Name, "error", err)
		}
	}

	for _, e := range entities {
		if _, seen := r.parents[e.Name]; seen {
			continue
		}
		accepted := []string{}
		for _, parent := range e.Extends {
			if !r.index.Has(parent) {
				r.diags.Add(core.SeverityWarning, core.CodeUnknownParent, e.Name,
					&core.UnknownParentError{Child: e.Name, Parent: parent})
				continue
			}
			if contains(accepted, parent) {
				continue
			}
			if parent == e.Name {
				r.diags.Warn(core.CodeInheritCycle, e.Name, "%s extends itself", e.Name)
				continue
			}
			if err := g.AddEdge(parent, e.Name); err != nil {
				r.diags.Add(core.SeverityWarning, core.CodeInheritCycle, e.Name,
					fmt.Errorf("extends %s would create a cycle: %w", parent, err))
				continue
			}
			accepted = append(accepted, parent)
		}
		r.parents[e.Name] = accepted
	}
}

func (r *Resolver) flatten(e *core.Entity) core.Entity {
	parents := r.parents[e.Name]
	if len(parents) == 0 {
		return Flatten(*e, nil)
	}

	chain := make([]core.Entity, 0, len(parents))
	for _, name := range parents {
		chain = append(chain, r.resolve(name))
	}
	r.logger.Debug("flattened entity", "entity", e.Name, "parents", parents)
	return Flatten(*e, chain)
}

// resolve returns the memoized flattened form of the named entity.
func (r *Resolver) resolve(name string) core.Entity {
	if e, ok := r.resolved[name]; ok {
		return e
	}
	src, _ := r.index.Lookup(name)
	e := r.flatten(src)
	r.resolved[name] = e
	return e
}

// Resolve is a convenience wrapper building a fresh index and resolver.
func Resolve(entities []core.Entity, logger *slog.Logger) ([]core.Entity, core.Diagnostics) {
	return NewResolver(core.NewIndex(entities), logger).Resolve(entities)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
