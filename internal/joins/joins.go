// Package joins builds the join graph of a query context and resolves the
// dotted join path from its anchor to every joined entity.
//
// LookML attaches joins to the explore; each join names its target and
// carries a condition referencing the target and the entity it hangs off.
// The graph points from that inferred source to the target, so the path
// from the anchor to a target lists every entity that must already be
// joined before the target can attach.
package joins

import (
	"strings"

	"github.com/leapstack-labs/lkml2cube/internal/dag"
	"github.com/leapstack-labs/lkml2cube/pkg/core"
	"github.com/leapstack-labs/lkml2cube/pkg/expr"
)

// Join is a declared edge with its inferred source.
type Join struct {
	core.Edge
	// Source is the entity the join attaches to, inferred from the condition
	Source string
}

// Graph is the join graph of one query context. It is built per run and
// never shared.
type Graph struct {
	graph *dag.Graph
	joins []Join
}

// InferSource returns the entity an edge attaches to. The condition must
// reference exactly two distinct entities and one of them must be the
// edge's target.
func InferSource(edge core.Edge) (string, error) {
	refs := expr.References(edge.Condition)
	if len(refs) != 2 || (refs[0] != edge.Target && refs[1] != edge.Target) {
		return "", &core.MalformedEdgeError{
			Target:     edge.Target,
			Condition:  edge.Condition,
			References: refs,
		}
	}
	if refs[0] == edge.Target {
		return refs[1], nil
	}
	return refs[0], nil
}

// Build creates the join graph for edges. Malformed edges are dropped from
// the graph and reported; the rest keep their declaration order.
func Build(edges []core.Edge) (*Graph, core.Diagnostics) {
	var diags core.Diagnostics
	g := &Graph{graph: dag.NewGraph()}

	for _, edge := range edges {
		source, err := InferSource(edge)
		if err != nil {
			diags.Add(core.SeverityError, core.CodeMalformedEdge, edge.Owner, err)
			continue
		}

		g.graph.AddNode(source)
		g.graph.AddNode(edge.Target)
		if err := g.graph.AddEdge(source, edge.Target); err != nil {
			diags.Add(core.SeverityError, core.CodeMalformedEdge, edge.Owner, err)
			continue
		}
		g.joins = append(g.joins, Join{Edge: edge, Source: source})
	}

	if cyclic, path := g.graph.HasCycle(); cyclic {
		diags.Warn(core.CodeJoinCycle, ownerOf(edges),
			"join graph contains a cycle: %s", strings.Join(path, " -> "))
	}

	return g, diags
}

// Joins returns the well-formed joins in declaration order.
func (g *Graph) Joins() []Join {
	return g.joins
}

// Resolve returns the shortest entity chain from anchor to target. When no
// path exists it falls back to [anchor, target] and returns an
// *core.UnreachableNodeError alongside the degraded path.
func (g *Graph) Resolve(anchor, target string) ([]string, error) {
	if path, ok := g.graph.ShortestPath(anchor, target); ok {
		return path, nil
	}
	return []string{anchor, target}, &core.UnreachableNodeError{From: anchor, To: target}
}

// ResolvePath is Resolve joined with dots, the form Cube views use.
func (g *Graph) ResolvePath(anchor, target string) (string, error) {
	path, err := g.Resolve(anchor, target)
	return strings.Join(path, "."), err
}

func ownerOf(edges []core.Edge) string {
	if len(edges) == 0 {
		return ""
	}
	return edges[0].Owner
}
