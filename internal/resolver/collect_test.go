package resolver

import (
	"context"
	"testing"

	"github.com/standardbeagle/lci/internal/types"
)

func docWithNodes(path string, id types.FileID, nodes ...*types.IRNode) *types.IRDocument {
	var imports []*types.IRNode
	for _, n := range nodes {
		if n.Kind == types.NodeImport {
			imports = append(imports, n)
		}
	}
	return &types.IRDocument{FilePath: path, FileID: id, Nodes: nodes, Imports: imports}
}

func node(kind types.NodeKind, fqn, name string) *types.IRNode {
	return &types.IRNode{Kind: kind, FQN: fqn, Name: name}
}

func TestCollector_CollectFile_SkipsImportsAndEmptyFQN(t *testing.T) {
	c := NewCollector()
	doc := docWithNodes("a.go", 1,
		node(types.NodeFunction, "pkg.Foo", "Foo"),
		node(types.NodeImport, "pkg.Bar", "Bar"), // must never enter the symbol table (I5)
		node(types.NodeFunction, "", "anon"),     // empty FQN, also skipped
	)
	c.CollectFile(doc, "repo", "snap")

	if got := c.table.Get("pkg.Foo"); got == nil {
		t.Fatal("expected pkg.Foo to be collected")
	}
	if got := c.table.Get("pkg.Bar"); got != nil {
		t.Fatalf("expected Import-kind node to be skipped from the symbol table, got %+v", got)
	}
}

func TestCollector_CollectFile_RecordsAmbiguityAcrossFiles(t *testing.T) {
	c := NewCollector()
	docA := docWithNodes("a.go", 1, node(types.NodeFunction, "pkg.Dup", "Dup"))
	docA.Nodes[0].FilePath = "a.go"
	docA.Nodes[0].Span = types.Span{FilePath: "a.go"}
	docB := docWithNodes("b.go", 2, node(types.NodeFunction, "pkg.Dup", "Dup"))
	docB.Nodes[0].FilePath = "b.go"
	docB.Nodes[0].Span = types.Span{FilePath: "b.go"}

	c.CollectFile(docA, "repo", "snap")
	c.CollectFile(docB, "repo", "snap")

	ambiguities := c.Ambiguities(map[string]types.FileID{"a.go": 1, "b.go": 2})
	if len(ambiguities) != 1 {
		t.Fatalf("expected exactly one ambiguity diagnostic, got %d: %+v", len(ambiguities), ambiguities)
	}
	if ambiguities[0].FQN != "pkg.Dup" || len(ambiguities[0].Candidates) != 2 {
		t.Fatalf("unexpected ambiguity diagnostic: %+v", ambiguities[0])
	}
}

func TestCollector_RemoveFile_DropsOnlyThatFilesSymbols(t *testing.T) {
	c := NewCollector()
	docA := docWithNodes("a.go", 1, node(types.NodeFunction, "pkg.A", "A"))
	docB := docWithNodes("b.go", 2, node(types.NodeFunction, "pkg.B", "B"))
	c.CollectFile(docA, "repo", "snap")
	c.CollectFile(docB, "repo", "snap")

	c.RemoveFile(1)

	if got := c.table.Get("pkg.A"); got != nil {
		t.Fatalf("expected pkg.A removed, got %+v", got)
	}
	if got := c.table.Get("pkg.B"); got == nil {
		t.Fatal("expected pkg.B to survive removing a different file")
	}
}

func TestCollectAll_ParallelAcrossFiles(t *testing.T) {
	docs := []*types.IRDocument{
		docWithNodes("a.go", 1, node(types.NodeFunction, "pkg.A", "A")),
		docWithNodes("b.go", 2, node(types.NodeFunction, "pkg.B", "B")),
		docWithNodes("c.go", 3, node(types.NodeFunction, "pkg.C", "C")),
	}
	c, err := CollectAll(context.Background(), docs, "repo", "snap", 2)
	if err != nil {
		t.Fatalf("CollectAll: %v", err)
	}
	for _, fqn := range []string{"pkg.A", "pkg.B", "pkg.C"} {
		if c.table.Get(fqn) == nil {
			t.Fatalf("expected %s to be collected", fqn)
		}
	}
}

func TestCollectAll_CancelledContextReturnsError(t *testing.T) {
	docs := []*types.IRDocument{
		docWithNodes("a.go", 1, node(types.NodeFunction, "pkg.A", "A")),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CollectAll(ctx, docs, "repo", "snap", 1)
	if err == nil {
		t.Fatal("expected a cancellation error from CollectAll on an already-cancelled context")
	}
}
