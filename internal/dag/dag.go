// Package dag provides directed graph operations for join composition.
// It keeps adjacency in insertion order, detects cycles, and finds
// shortest join paths with a breadth-first search.
package dag

import (
	"fmt"
)

// Graph is a directed graph whose adjacency lists preserve insertion order,
// so every traversal is deterministic for identical input.
type Graph struct {
	nodes map[string]bool
	order []string            // node IDs in insertion order
	edges map[string][]string // parent -> children
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]bool),
		edges: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Adding a known node is a no-op.
func (g *Graph) AddNode(id string) {
	if g.nodes[id] {
		return
	}
	g.nodes[id] = true
	g.order = append(g.order, id)
	g.edges[id] = []string{}
}

// AddEdge adds a directed edge from parent to child.
func (g *Graph) AddEdge(parentID, childID string) error {
	// Ensure both nodes exist
	if !g.nodes[parentID] {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if !g.nodes[childID] {
		return fmt.Errorf("child node %q does not exist", childID)
	}

	// Check for self-loops
	if parentID == childID {
		return fmt.Errorf("self-loop detected: %s", parentID)
	}

	// Add edge (avoid duplicates)
	if !contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}

	return nil
}

// HasCycle returns true if the graph contains a cycle, along with the cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string) // Track the path for error reporting

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				// Found cycle, reconstruct path
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// ShortestPath returns the shortest chain of node IDs leading from one node
// to another, both ends included. The queue holds partial paths so the
// result needs no reconstruction; a node already on a partial path is never
// appended to it again, which bounds the search on cyclic input. Ties
// between equal-length paths go to the earliest inserted edge.
func (g *Graph) ShortestPath(from, to string) ([]string, bool) {
	queue := [][]string{{from}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		last := current[len(current)-1]
		if last == to {
			return current, true
		}

		for _, next := range g.edges[last] {
			if contains(current, next) {
				continue
			}
			extended := make([]string, len(current)+1)
			copy(extended, current)
			extended[len(current)] = next
			queue = append(queue, extended)
		}
	}

	return nil, false
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
