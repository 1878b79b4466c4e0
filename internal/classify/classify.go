// Package classify separates table-backed entities from alias-composed ones
// and reconstructs the joins of composed entities.
package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/lkml2cube/pkg/core"
)

// Defaults for synthesized joins. The meta API carries no cardinality for
// alias members, so every join is assumed to be a lookup.
const (
	DefaultJoinType     = "left_outer"
	DefaultRelationship = "many_to_one"
)

// Classify returns EntityComposed when e has no data source and at least one
// member carries an alias reference, EntityBase otherwise.
func Classify(e *core.Entity) core.EntityKind {
	if e.Source.IsZero() && e.HasAlias() {
		return core.EntityComposed
	}
	return core.EntityBase
}

// Partition splits entities by Classify, preserving input order, and stamps
// each with its kind.
func Partition(entities []core.Entity) (base, composed []core.Entity) {
	for _, e := range entities {
		e.Kind = Classify(&e)
		if e.Kind == core.EntityComposed {
			composed = append(composed, e)
		} else {
			base = append(base, e)
		}
	}
	return base, composed
}

// References returns the sorted, de-duplicated entity names referenced by
// the alias members of e.
func References(e *core.Entity) []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(alias string) {
		entity, _, ok := strings.Cut(alias, ".")
		if !ok || entity == "" || seen[entity] {
			return
		}
		seen[entity] = true
		refs = append(refs, entity)
	}
	for _, a := range e.Attributes {
		add(a.Alias)
	}
	for _, m := range e.Measures {
		add(m.Alias)
	}
	sort.Strings(refs)
	return refs
}

// Synthesize builds the query context of a composed entity. The anchor is the
// lexicographically smallest referenced entity; each other referenced entity
// is joined to it on a reconstructed id equality.
func Synthesize(e *core.Entity) (core.Explore, core.Diagnostics) {
	var diags core.Diagnostics

	explore := core.Explore{
		Name:        e.Name,
		Label:       e.Label,
		Description: e.Description,
		Hidden:      e.IsHidden(),
	}

	refs := References(e)
	if len(refs) == 0 {
		diags.Warn(core.CodeUnknownEntity, e.Name, "no alias member names an entity")
		return explore, diags
	}

	anchor := refs[0]
	explore.ViewName = anchor
	if len(refs) > 1 {
		diags = append(diags, core.Diagnostic{
			Severity: core.SeverityInfo,
			Code:     core.CodeHeuristicAnchor,
			Entity:   e.Name,
			Message:  fmt.Sprintf("anchor %s chosen from [%s]", anchor, strings.Join(refs, ", ")),
		})
	}

	for _, other := range refs[1:] {
		explore.Joins = append(explore.Joins, core.Edge{
			Owner:        e.Name,
			Target:       other,
			Condition:    fmt.Sprintf("${%s.id} = ${%s.id}", anchor, other),
			Relationship: DefaultRelationship,
			Type:         DefaultJoinType,
		})
	}
	return explore, diags
}
