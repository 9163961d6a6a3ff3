package symbolgraph

import (
	"testing"

	"github.com/standardbeagle/lci/internal/graph"
	"github.com/standardbeagle/lci/internal/types"
)

func sampleGraphDoc() *graph.GraphDocument {
	caller := &types.IRNode{ID: 1, Kind: types.NodeFunction, FQN: "pkg.Caller", Name: "Caller", FilePath: "a.go"}
	callee := &types.IRNode{ID: 2, Kind: types.NodeFunction, FQN: "pkg.Callee", Name: "Callee", FilePath: "a.go"}
	parent := &types.IRNode{ID: 3, Kind: types.NodeClass, FQN: "pkg.Parent", Name: "Parent", FilePath: "a.go"}
	doc := &types.IRDocument{
		FilePath: "a.go",
		Nodes:    []*types.IRNode{caller, callee, parent},
		Edges: []*types.IREdge{
			{Kind: types.EdgeCalls, SourceID: 1, TargetID: 2},
			{Kind: types.EdgeContains, SourceID: 3, TargetID: 1},
			{Kind: types.EdgeImplements, SourceID: 1, TargetID: 2}, // dropped: not one of the five preserved kinds
			{Kind: types.EdgeCalls, SourceID: 1, TargetID: 99},     // dangling target: must be skipped, not emitted
		},
	}
	return graph.Build(doc, nil)
}

func TestBuild_KeepsOnlyTheFivePreservedRelationKinds(t *testing.T) {
	sg := Build(sampleGraphDoc(), "repo", "snap")

	if len(sg.Symbols) != 3 {
		t.Fatalf("expected 3 symbols, got %d", len(sg.Symbols))
	}
	if len(sg.Relations) != 2 {
		t.Fatalf("expected 2 relations (Calls + Contains survive, Implements and the dangling Calls are dropped), got %d: %+v", len(sg.Relations), sg.Relations)
	}
	for _, r := range sg.Relations {
		if r.Kind != types.RelationCalls && r.Kind != types.RelationContains {
			t.Fatalf("unexpected relation kind survived: %v", r.Kind)
		}
	}
}

func TestBuild_DanglingRelationTargetIsSkipped(t *testing.T) {
	sg := Build(sampleGraphDoc(), "repo", "snap")
	if callees := sg.Callees(1); len(callees) != 1 || callees[0] != 2 {
		t.Fatalf("expected node 1's only surviving callee to be 2 (the dangling target-99 edge dropped), got %v", callees)
	}
}

func TestBuild_IndicesMatchRelations(t *testing.T) {
	sg := Build(sampleGraphDoc(), "repo", "snap")

	if callers := sg.Callers(2); len(callers) != 1 || callers[0] != 1 {
		t.Fatalf("expected node 2's callers to be [1], got %v", callers)
	}
	if children := sg.Children(3); len(children) != 1 || children[0] != 1 {
		t.Fatalf("expected node 3's children to be [1], got %v", children)
	}
	if syms := sg.SymbolsInFile("a.go"); len(syms) != 3 {
		t.Fatalf("expected 3 symbols in a.go, got %d", len(syms))
	}
}

func TestBuild_SymbolsStampedWithRepoAndSnapshot(t *testing.T) {
	sg := Build(sampleGraphDoc(), "my-repo", "snap-1")
	sym, ok := sg.GetSymbol(1)
	if !ok {
		t.Fatal("expected symbol 1 to be present")
	}
	if sym.RepoID != "my-repo" || sym.SnapshotID != "snap-1" {
		t.Fatalf("expected symbol stamped with repo/snapshot ids, got %+v", sym)
	}
}

func TestMerge_CombinesTwoFileGraphsWithoutLosingEitherSide(t *testing.T) {
	sgA := Build(sampleGraphDoc(), "repo", "snap")

	otherNode := &types.IRNode{ID: 10, Kind: types.NodeFunction, FQN: "pkg.Other", Name: "Other", FilePath: "b.go"}
	docB := &types.IRDocument{FilePath: "b.go", Nodes: []*types.IRNode{otherNode}}
	sgB := Build(graph.Build(docB, nil), "repo", "snap")

	merged := New()
	merged.Merge(sgA)
	merged.Merge(sgB)

	if len(merged.Symbols) != 4 {
		t.Fatalf("expected 4 merged symbols, got %d", len(merged.Symbols))
	}
	if len(merged.Relations) != 2 {
		t.Fatalf("expected 2 merged relations, got %d", len(merged.Relations))
	}
	if len(merged.SymbolsInFile("a.go")) != 3 || len(merged.SymbolsInFile("b.go")) != 1 {
		t.Fatalf("expected per-file index preserved across merge: a.go=%v b.go=%v",
			merged.SymbolsInFile("a.go"), merged.SymbolsInFile("b.go"))
	}
}
