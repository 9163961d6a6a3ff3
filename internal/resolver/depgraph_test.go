package resolver

import (
	"reflect"
	"testing"

	"github.com/standardbeagle/lci/internal/types"
)

func importMap(edges map[string][]string) map[string][]types.ResolvedImport {
	out := make(map[string][]types.ResolvedImport, len(edges))
	for file, deps := range edges {
		var imps []types.ResolvedImport
		for _, d := range deps {
			imps = append(imps, types.ResolvedImport{SourceFile: d})
		}
		out[file] = imps
	}
	return out
}

func TestBuildDependencyGraph_SkipsExternalAndSelfEdges(t *testing.T) {
	fileImports := map[string][]types.ResolvedImport{
		"a.go": {
			{SourceFile: "b.go"},
			{SourceFile: "", IsExternal: true},
			{SourceFile: "a.go"}, // self-import, must not create a self-edge
			{IsExternal: true, SourceFile: "c.go"},
		},
	}
	graph := BuildDependencyGraph(fileImports)
	if got, want := graph["a.go"], []string{"b.go"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected a.go -> [b.go], got %v", got)
	}
}

func TestBuildDependencyGraph_DedupesParallelEdges(t *testing.T) {
	fileImports := importMap(map[string][]string{
		"a.go": {"b.go", "b.go", "b.go"},
	})
	graph := BuildDependencyGraph(fileImports)
	if len(graph["a.go"]) != 1 {
		t.Fatalf("expected a single deduped edge, got %v", graph["a.go"])
	}
}

func TestStronglyConnectedComponents_FindsCycle(t *testing.T) {
	graph := map[string][]string{
		"a.go": {"b.go"},
		"b.go": {"c.go"},
		"c.go": {"a.go"},
		"d.go": nil,
	}
	sccs := StronglyConnectedComponents(graph)

	var cyclic [][]string
	for _, c := range sccs {
		if len(c) >= 2 {
			cyclic = append(cyclic, c)
		}
	}
	if len(cyclic) != 1 {
		t.Fatalf("expected exactly one multi-node SCC, got %v", sccs)
	}
	want := []string{"a.go", "b.go", "c.go"}
	if !reflect.DeepEqual(cyclic[0], want) {
		t.Fatalf("expected cyclic component %v, got %v", want, cyclic[0])
	}
}

func TestStronglyConnectedComponents_SelfEdgeIsACycle(t *testing.T) {
	graph := map[string][]string{"a.go": {"a.go"}}
	sccs := StronglyConnectedComponents(graph)
	if len(sccs) != 1 || len(sccs[0]) != 1 || sccs[0][0] != "a.go" {
		t.Fatalf("expected a single-node self-cycle SCC, got %v", sccs)
	}
}

func TestTopologicalOrder_AcyclicGraphOrdersDependenciesFirst(t *testing.T) {
	// a depends on b, b depends on c: c must precede b must precede a.
	graph := map[string][]string{
		"a.go": {"b.go"},
		"b.go": {"c.go"},
		"c.go": nil,
	}
	order := TopologicalOrder(graph)
	if order == nil {
		t.Fatal("expected a topological order for an acyclic graph")
	}
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	if pos["c.go"] >= pos["b.go"] || pos["b.go"] >= pos["a.go"] {
		t.Fatalf("expected order c, b, a; got %v", order)
	}
}

func TestTopologicalOrder_CyclicGraphReturnsNil(t *testing.T) {
	graph := map[string][]string{
		"a.go": {"b.go"},
		"b.go": {"a.go"},
	}
	if order := TopologicalOrder(graph); order != nil {
		t.Fatalf("expected nil order for a cyclic graph, got %v", order)
	}
}
