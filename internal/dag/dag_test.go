package dag

import (
	"reflect"
	"testing"
)

// newChain builds a graph with the given edges, adding nodes as needed.
func newChain(t *testing.T, edges ...[2]string) *Graph {
	t.Helper()
	g := NewGraph()
	for _, e := range edges {
		g.AddNode(e[0])
		g.AddNode(e[1])
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("failed to add edge %s -> %s: %v", e[0], e[1], err)
		}
	}
	return g
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()

	g.AddNode("orders")
	g.AddNode("customers")
	g.AddNode("addresses")

	if err := g.AddEdge("orders", "customers"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	if err := g.AddEdge("customers", "addresses"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	path, ok := g.ShortestPath("orders", "addresses")
	if !ok || !reflect.DeepEqual(path, []string{"orders", "customers", "addresses"}) {
		t.Errorf("expected [orders customers addresses], got %v (ok=%v)", path, ok)
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")

	err := g.AddEdge("a", "nonexistent")
	if err == nil {
		t.Error("expected error for nonexistent child node")
	}

	err = g.AddEdge("nonexistent", "a")
	if err == nil {
		t.Error("expected error for nonexistent parent node")
	}
}

func TestGraph_AddEdge_SelfLoop(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")

	err := g.AddEdge("a", "a")
	if err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestGraph_AddNode_Idempotent(t *testing.T) {
	g := newChain(t, [2]string{"a", "b"})
	g.AddNode("a")

	path, ok := g.ShortestPath("a", "b")
	if !ok || !reflect.DeepEqual(path, []string{"a", "b"}) {
		t.Errorf("expected re-adding a node to keep its edges, got %v (ok=%v)", path, ok)
	}
}

func TestGraph_HasCycle_NoCycle(t *testing.T) {
	g := newChain(t, [2]string{"a", "b"}, [2]string{"b", "c"})

	hasCycle, path := g.HasCycle()
	if hasCycle {
		t.Errorf("expected no cycle, but found: %v", path)
	}
}

func TestGraph_HasCycle_WithCycle(t *testing.T) {
	g := newChain(t,
		[2]string{"a", "b"},
		[2]string{"b", "c"},
		[2]string{"c", "a"}, // Creates cycle
	)

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Error("expected cycle to be detected")
	}
	if len(path) == 0 {
		t.Error("expected cycle path to be non-empty")
	}
}

func TestGraph_ShortestPath_PrefersDirectEdge(t *testing.T) {
	g := newChain(t,
		[2]string{"A", "B"},
		[2]string{"B", "C"},
		[2]string{"A", "C"},
	)

	path, ok := g.ShortestPath("A", "C")
	if !ok {
		t.Fatal("expected a path")
	}
	if !reflect.DeepEqual(path, []string{"A", "C"}) {
		t.Errorf("expected [A C], got %v", path)
	}
}

func TestGraph_ShortestPath_Chain(t *testing.T) {
	g := newChain(t, [2]string{"A", "B"}, [2]string{"B", "C"})

	path, ok := g.ShortestPath("A", "C")
	if !ok {
		t.Fatal("expected a path")
	}
	if !reflect.DeepEqual(path, []string{"A", "B", "C"}) {
		t.Errorf("expected [A B C], got %v", path)
	}

	if _, ok := g.ShortestPath("A", "D"); ok {
		t.Error("expected no path to D")
	}
}

func TestGraph_ShortestPath_Self(t *testing.T) {
	g := newChain(t, [2]string{"A", "B"})

	path, ok := g.ShortestPath("A", "A")
	if !ok || !reflect.DeepEqual(path, []string{"A"}) {
		t.Errorf("expected [A], got %v (ok=%v)", path, ok)
	}
}

func TestGraph_ShortestPath_TieBreakByInsertionOrder(t *testing.T) {
	// Two equal-length routes to D; the one through the first inserted edge wins.
	g := newChain(t,
		[2]string{"A", "C"},
		[2]string{"A", "B"},
		[2]string{"B", "D"},
		[2]string{"C", "D"},
	)

	for i := 0; i < 20; i++ {
		path, ok := g.ShortestPath("A", "D")
		if !ok {
			t.Fatal("expected a path")
		}
		if !reflect.DeepEqual(path, []string{"A", "C", "D"}) {
			t.Fatalf("expected [A C D], got %v", path)
		}
	}
}

func TestGraph_ShortestPath_TerminatesOnCycle(t *testing.T) {
	g := newChain(t,
		[2]string{"A", "B"},
		[2]string{"B", "C"},
		[2]string{"C", "A"},
	)

	if _, ok := g.ShortestPath("A", "Z"); ok {
		t.Error("expected no path to Z")
	}
	path, ok := g.ShortestPath("B", "A")
	if !ok || !reflect.DeepEqual(path, []string{"B", "C", "A"}) {
		t.Errorf("expected [B C A], got %v", path)
	}
}

func TestGraph_DuplicateEdges(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")
	g.AddNode("b")

	// Add same edge twice
	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("a", "b")

	if got := g.edges["a"]; !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("expected 1 edge (no duplicates), got %v", got)
	}
}
